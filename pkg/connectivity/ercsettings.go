package connectivity

// ERCSettings selects the optional connectivity checks and overrides their
// severities. No-connect and label checks always run.
type ERCSettings struct {
	CheckDriverConflicts    bool
	CheckBusToNetConflicts  bool
	CheckBusEntryConflicts  bool
	CheckBusToBusConflicts  bool
	CheckUniqueGlobalLabels bool

	// Severities overrides DefaultSeverity per check; SeverityIgnore
	// disables a check
	Severities map[ErrorKind]Severity
}

// DefaultERCSettings enables every check at its default severity
func DefaultERCSettings() ERCSettings {
	return ERCSettings{
		CheckDriverConflicts:    true,
		CheckBusToNetConflicts:  true,
		CheckBusEntryConflicts:  true,
		CheckBusToBusConflicts:  true,
		CheckUniqueGlobalLabels: true,
	}
}

// Severity returns the effective severity of a check
func (s ERCSettings) Severity(kind ErrorKind) Severity {
	if sev, ok := s.Severities[kind]; ok {
		return sev
	}
	return kind.DefaultSeverity()
}
