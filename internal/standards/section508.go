package standards

// Provision is a Section 508 (36 CFR 1194.22) web provision.
type Provision struct {
	ID          string
	Description string
}

// provisions is the fixed Section 508 provision table. Scorecards keep this
// insertion order.
var provisions = []Provision{
	{"1194.22(a)", "A text equivalent for every non-text element shall be provided"},
	{"1194.22(b)", "Equivalent alternatives for multimedia presentations shall be synchronized with the presentation"},
	{"1194.22(c)", "Information conveyed with color shall also be available without color"},
	{"1194.22(d)", "Documents shall be readable without requiring an associated style sheet"},
	{"1194.22(e)", "Redundant text links shall be provided for each active region of a server-side image map"},
	{"1194.22(f)", "Client-side image maps shall be provided instead of server-side image maps where possible"},
	{"1194.22(g)", "Row and column headers shall be identified for data tables"},
	{"1194.22(h)", "Markup shall associate data cells and header cells for complex data tables"},
	{"1194.22(i)", "Frames shall be titled with text that facilitates frame identification and navigation"},
	{"1194.22(j)", "Pages shall avoid causing the screen to flicker between 2 Hz and 55 Hz"},
	{"1194.22(k)", "A text-only equivalent page shall be provided when compliance cannot be achieved otherwise"},
	{"1194.22(l)", "Scripted content shall be identified with functional text readable by assistive technology"},
	{"1194.22(m)", "Pages requiring a plug-in or applet shall link to that plug-in or applet"},
	{"1194.22(n)", "Electronic forms shall be accessible to people using assistive technology"},
	{"1194.22(o)", "A method shall be provided that permits users to skip repetitive navigation links"},
	{"1194.22(p)", "Users shall be alerted and given sufficient time when a timed response is required"},
}

var provisionIndex = func() map[string]int {
	m := make(map[string]int, len(provisions))
	for i, p := range provisions {
		m[p.ID] = i
	}
	return m
}()

// Section508Provisions returns the provision table in insertion order.
func Section508Provisions() []Provision {
	result := make([]Provision, len(provisions))
	copy(result, provisions)
	return result
}

// LookupProvision returns the provision with the given id.
func LookupProvision(id string) (Provision, bool) {
	i, ok := provisionIndex[id]
	if !ok {
		return Provision{}, false
	}
	return provisions[i], true
}
