package connectivity

import "fmt"

// Severity of an ERC violation
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "ignore"
	}
}

// ParseSeverity maps "error", "warning" or "ignore" to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "ignore":
		return SeverityIgnore, nil
	}
	return SeverityIgnore, fmt.Errorf("%w: unknown severity %q", ErrInvalidConfig, s)
}

// ErrorKind identifies an ERC check
type ErrorKind int

const (
	ErcDriverConflict ErrorKind = iota + 1
	ErcBusToNetConflict
	ErcBusToBusConflict
	ErcBusEntryConflict
	ErcNoConnectConnected
	ErcNoConnectDangling
	ErcPinNotConnected
	ErcLabelNotConnected
	ErcIsolatedGlobalLabel
)

var errorKindNames = map[ErrorKind]string{
	ErcDriverConflict:      "driver_conflict",
	ErcBusToNetConflict:    "bus_to_net_conflict",
	ErcBusToBusConflict:    "bus_to_bus_conflict",
	ErcBusEntryConflict:    "bus_entry_conflict",
	ErcNoConnectConnected:  "no_connect_connected",
	ErcNoConnectDangling:   "no_connect_dangling",
	ErcPinNotConnected:     "pin_not_connected",
	ErcLabelNotConnected:   "label_dangling",
	ErcIsolatedGlobalLabel: "global_label_dangling",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind maps a check name as returned by String to its kind
func ParseErrorKind(s string) (ErrorKind, error) {
	for k, name := range errorKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown check %q", ErrInvalidConfig, s)
}

// ErrorKinds returns every check kind in declaration order
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(errorKindNames))
	for k := ErcDriverConflict; k <= ErcIsolatedGlobalLabel; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// DefaultSeverity is the severity a check reports with unless overridden
func (k ErrorKind) DefaultSeverity() Severity {
	switch k {
	case ErcBusToNetConflict, ErcBusToBusConflict, ErcNoConnectConnected:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Marker is one ERC violation attached to a screen
type Marker struct {
	ID       string
	Kind     ErrorKind
	Severity Severity
	Message  string
	Pos      Point
	AuxPos   Point
	HasAux   bool
	Items    []*Item
	Sheet    *SheetPath
}

func (m *Marker) String() string {
	return fmt.Sprintf("%s: %s at %s on %s", m.Severity, m.Message, m.Pos, m.Sheet)
}
