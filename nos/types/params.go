package types

import (
	"strings"

	"github.com/netease/nos-go-sdk/nos/util"
)

// Param is a query parameter. A nil Value renders as a bare flag ("uploads").
type Param struct {
	Name  string
	Value *string
}

// Params keeps query parameters in insertion order.
type Params []Param

// Get returns the value of the first parameter called name.
func (p Params) Get(name string) (*string, bool) {
	for _, v := range p {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

func (p Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set replaces the value of an existing parameter or appends a new one.
func (p *Params) Set(name string, value *string) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Name: name, Value: value})
}

// SetFlag sets a parameter without value.
func (p *Params) SetFlag(name string) {
	p.Set(name, nil)
}

// SetValue sets a parameter with a value.
func (p *Params) SetValue(name, value string) {
	p.Set(name, &value)
}

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	to := make(Params, len(p))
	copy(to, p)
	return to
}

// Encode renders the parameters in order as name or name=escaped-value joined by '&'.
func (p Params) Encode() string {
	items := make([]string, 0, len(p))
	for _, v := range p {
		items = append(items, v.String())
	}
	return strings.Join(items, "&")
}

func (p Param) String() string {
	if p.Value == nil {
		return p.Name
	}
	return p.Name + "=" + util.EscapePath(*p.Value)
}
