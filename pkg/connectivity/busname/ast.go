package busname

// Label is the root of a parsed bus label
type Label struct {
	Vector *Vector `  @@`
	Group  *Group  `| @@`
}

// Vector is an indexed bus
// Example: DATA[0..7]
type Vector struct {
	Prefix string `@Name`
	Start  int    `LBracket @Int`
	End    int    `Dots @Int RBracket`
}

// Group is a named or anonymous set of heterogeneous members
// Example: USB{DP DM VBUS} or {SDA SCL}
type Group struct {
	Name    string         `@Name?`
	Members []*GroupMember `LBrace @@+ RBrace`
}

// GroupMember is either a nested vector or a plain net/alias name
type GroupMember struct {
	Vector *Vector `  @@`
	Name   string  `| @Name`
}
