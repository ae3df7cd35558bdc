package metadata

// NamespaceInfo is a namespace and the declarations directly inside it.
type NamespaceInfo struct {
	Info

	Children NamespaceScope `json:"children"`

	IsAnonymous bool `json:"is_anonymous,omitempty"`
	IsInline    bool `json:"is_inline,omitempty"`
}

// NewNamespaceInfo returns a namespace with every field at its default.
func NewNamespaceInfo(id SymbolID, name string) *NamespaceInfo {
	return &NamespaceInfo{Info: Info{ID: id, Kind: KindNamespace, Name: name}}
}

// NewGlobalNamespace returns the empty global namespace.
func NewGlobalNamespace() *NamespaceInfo {
	return NewNamespaceInfo(GlobalNamespaceID, "")
}

func (*NamespaceInfo) TypeID() InfoKind { return KindNamespace }
func (n *NamespaceInfo) Base() *Info    { return &n.Info }
func (*NamespaceInfo) entity()          {}

func (n *NamespaceInfo) Clone() Entity {
	c := *n
	c.Info = n.Info.clone()
	c.Children = n.Children.clone()
	return &c
}
