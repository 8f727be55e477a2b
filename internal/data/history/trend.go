package history

// Delta is the change in model sizes between two runs.
type Delta struct {
	Namespaces     int
	Classes        int
	Members        int
	Win32Functions int
}

func (d Delta) IsZero() bool { return d == Delta{} }

// Compare returns cur minus prev.
func Compare(prev, cur Run) Delta {
	return Delta{
		Namespaces:     cur.Namespaces - prev.Namespaces,
		Classes:        cur.Classes - prev.Classes,
		Members:        cur.Members - prev.Members,
		Win32Functions: cur.Win32Functions - prev.Win32Functions,
	}
}
