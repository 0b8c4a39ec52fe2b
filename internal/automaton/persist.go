package automaton

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/simone/internal/simerr"
	"github.com/dekarrin/simone/internal/util"
)

// jsonTransition is one row of the "transitions" array in the persisted
// form: [state, symbol, [targets...]].
type jsonTransition struct {
	State   string
	Symbol  string
	Targets []string
}

func (t jsonTransition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.State, t.Symbol, t.Targets})
}

func (t *jsonTransition) UnmarshalJSON(data []byte) error {
	var row [3]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if err := json.Unmarshal(row[0], &t.State); err != nil {
		return err
	}
	if err := json.Unmarshal(row[1], &t.Symbol); err != nil {
		return err
	}
	return json.Unmarshal(row[2], &t.Targets)
}

// persistedForm is the on-disk JSON shape of an Automaton: a direct
// transcription of the states/alphabet/transitions/initial_state/
// final_states fields used by this module's persistence format.
type persistedForm struct {
	States       []string         `json:"states"`
	Alphabet     []string         `json:"alphabet"`
	Transitions  []jsonTransition `json:"transitions"`
	InitialState string           `json:"initial_state"`
	FinalStates  []string         `json:"final_states"`
}

func (a *Automaton) toPersistedForm() persistedForm {
	p := persistedForm{
		States:       a.States(),
		Alphabet:     a.Alphabet(),
		InitialState: a.initial,
		FinalStates:  a.AcceptingStates(),
	}

	for _, name := range a.States() {
		st := a.states[name]
		for _, sym := range util.OrderedKeys(st.transitions) {
			targets := st.transitions[sym].Elements()
			sort.Strings(targets)
			p.Transitions = append(p.Transitions, jsonTransition{
				State:   name,
				Symbol:  sym,
				Targets: targets,
			})
		}
	}

	return p
}

func fromPersistedForm(p persistedForm) (*Automaton, error) {
	a := New()

	finals := map[string]bool{}
	for _, f := range p.FinalStates {
		finals[f] = true
	}

	for _, name := range p.States {
		if err := a.AddState(name, finals[name]); err != nil {
			return nil, err
		}
	}
	for _, sym := range p.Alphabet {
		a.AddSymbol(sym)
	}
	if p.InitialState != "" {
		if err := a.SetInitial(p.InitialState); err != nil {
			return nil, err
		}
	}
	for _, t := range p.Transitions {
		for _, target := range t.Targets {
			if err := a.AddTransition(t.State, t.Symbol, target); err != nil {
				return nil, err
			}
		}
	}

	return a, nil
}

// Save writes the automaton to path in the JSON persistence format:
// an object with "states", "alphabet", "transitions" (an array of
// [state, symbol, [targets]] triples), "initial_state", and "final_states".
func (a *Automaton) Save(path string) error {
	data, err := json.MarshalIndent(a.toPersistedForm(), "", "    ")
	if err != nil {
		return simerr.New("encode automaton as JSON", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return simerr.New(fmt.Sprintf("write %q", path), err)
	}
	return nil
}

// Load reads an automaton previously written by Save.
func Load(path string) (*Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.New(fmt.Sprintf("read %q", path), err)
	}

	return Decode(data)
}

// Encode marshals the automaton to the same JSON persistence format Save
// writes to disk, without touching the filesystem. Used by the server to
// store automaton records as opaque bytes.
func (a *Automaton) Encode() ([]byte, error) {
	data, err := json.Marshal(a.toPersistedForm())
	if err != nil {
		return nil, simerr.New("encode automaton as JSON", err)
	}
	return data, nil
}

// Decode unmarshals an automaton previously produced by Encode or Save.
func Decode(data []byte) (*Automaton, error) {
	var p persistedForm
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, simerr.New("decode automaton JSON", err)
	}

	return fromPersistedForm(p)
}

// reziForm is the struct rezi's binary tagged-length encoding walks via
// reflection; it mirrors persistedForm but keeps transitions as three
// parallel slices since rezi encodes structs field-by-field rather than
// arbitrary tuples.
type reziForm struct {
	States       []string
	Alphabet     []string
	TransState   []string
	TransSymbol  []string
	TransTargets [][]string
	InitialState string
	FinalStates  []string
}

func (a *Automaton) toReziForm() reziForm {
	r := reziForm{
		States:       a.States(),
		Alphabet:     a.Alphabet(),
		InitialState: a.initial,
		FinalStates:  a.AcceptingStates(),
	}

	for _, name := range a.States() {
		st := a.states[name]
		for _, sym := range util.OrderedKeys(st.transitions) {
			targets := st.transitions[sym].Elements()
			sort.Strings(targets)
			r.TransState = append(r.TransState, name)
			r.TransSymbol = append(r.TransSymbol, sym)
			r.TransTargets = append(r.TransTargets, targets)
		}
	}

	return r
}

func fromReziForm(r reziForm) (*Automaton, error) {
	p := persistedForm{
		States:       r.States,
		Alphabet:     r.Alphabet,
		InitialState: r.InitialState,
		FinalStates:  r.FinalStates,
	}
	for i := range r.TransState {
		p.Transitions = append(p.Transitions, jsonTransition{
			State:   r.TransState[i],
			Symbol:  r.TransSymbol[i],
			Targets: r.TransTargets[i],
		})
	}
	return fromPersistedForm(p)
}

// SaveRezi encodes the automaton with github.com/dekarrin/rezi's binary
// tagged-length format, a more compact alternative to the JSON form used for
// the server's at-rest record storage.
func (a *Automaton) SaveRezi() []byte {
	return rezi.EncBinary(a.toReziForm())
}

// LoadRezi decodes an automaton previously produced by SaveRezi.
func LoadRezi(data []byte) (*Automaton, error) {
	var r reziForm
	n, err := rezi.DecBinary(data, &r)
	if err != nil {
		return nil, simerr.New("REZI decode automaton", err)
	}
	if n != len(data) {
		return nil, simerr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)))
	}
	return fromReziForm(r)
}
