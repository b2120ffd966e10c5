package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ValueKind discriminates the variants an AdditionalData value can hold. Each
// serialized value carries its kind so that round-trips are lossless without
// reflection-based dynamic typing.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindInt     ValueKind = "int"
	KindBool    ValueKind = "bool"
	KindAmounts ValueKind = "amounts"
	KindBasket  ValueKind = "basket"
)

var ErrMixedValueKinds = errors.New("additional data values under one key must share a kind")

// Value is one tagged value in an AdditionalData list.
type Value struct {
	kind    ValueKind
	str     string
	num     int64
	boolean bool
	amounts Amounts
	basket  *Basket
}

func StringValue(s string) Value   { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value       { return Value{kind: KindInt, num: i} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, boolean: b} }
func AmountsValue(a Amounts) Value { return Value{kind: KindAmounts, amounts: a} }
func BasketValue(b *Basket) Value  { return Value{kind: KindBasket, basket: b} }

func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) String() string   { return v.str }
func (v Value) Int() int64       { return v.num }
func (v Value) Bool() bool       { return v.boolean }
func (v Value) Amounts() Amounts { return v.amounts }
func (v Value) Basket() *Basket  { return v.basket }

type valueJSON struct {
	Kind    ValueKind       `json:"type"`
	Payload json.RawMessage `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindString:
		payload = v.str
	case KindInt:
		payload = v.num
	case KindBool:
		payload = v.boolean
	case KindAmounts:
		payload = v.amounts
	case KindBasket:
		payload = v.basket
	default:
		return nil, fmt.Errorf("unknown value kind %q", v.kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Kind: v.kind, Payload: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var aux valueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.Kind {
	case KindString:
		v.str = ""
		if err := json.Unmarshal(aux.Payload, &v.str); err != nil {
			return err
		}
	case KindInt:
		if err := json.Unmarshal(aux.Payload, &v.num); err != nil {
			return err
		}
	case KindBool:
		if err := json.Unmarshal(aux.Payload, &v.boolean); err != nil {
			return err
		}
	case KindAmounts:
		if err := json.Unmarshal(aux.Payload, &v.amounts); err != nil {
			return err
		}
	case KindBasket:
		v.basket = &Basket{}
		if err := json.Unmarshal(aux.Payload, v.basket); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown value kind %q", aux.Kind)
	}
	v.kind = aux.Kind
	return nil
}

// AdditionalData is an open, versionable key/value extension point used by
// requests and responses. Keys are case sensitive; each key holds a
// homogeneously-typed value list. Whether adding under an existing key merges
// or replaces is explicit at every call site, never implicit.
type AdditionalData struct {
	data map[string][]Value
}

func NewAdditionalData() *AdditionalData {
	return &AdditionalData{data: make(map[string][]Value)}
}

// Add stores values under key, replacing any existing entry.
func (d *AdditionalData) Add(key string, values ...Value) error {
	if len(values) == 0 {
		return errors.New("at least one value is required")
	}
	kind := values[0].kind
	for _, v := range values[1:] {
		if v.kind != kind {
			return fmt.Errorf("key %q: %w", key, ErrMixedValueKinds)
		}
	}
	if d.data == nil {
		d.data = make(map[string][]Value)
	}
	d.data[key] = append([]Value(nil), values...)
	return nil
}

// AddIfAbsent stores values under key only when the key does not exist yet.
func (d *AdditionalData) AddIfAbsent(key string, values ...Value) error {
	if d.HasData(key) {
		return nil
	}
	return d.Add(key, values...)
}

func (d *AdditionalData) AddString(key string, values ...string) error {
	vs := make([]Value, len(values))
	for i, s := range values {
		vs[i] = StringValue(s)
	}
	return d.Add(key, vs...)
}

func (d *AdditionalData) AddInt(key string, values ...int64) error {
	vs := make([]Value, len(values))
	for i, n := range values {
		vs[i] = IntValue(n)
	}
	return d.Add(key, vs...)
}

func (d *AdditionalData) AddBool(key string, value bool) error {
	return d.Add(key, BoolValue(value))
}

func (d *AdditionalData) AddAmounts(key string, amounts Amounts) error {
	return d.Add(key, AmountsValue(amounts))
}

func (d *AdditionalData) AddBasket(key string, basket *Basket) error {
	return d.Add(key, BasketValue(basket))
}

// Merge copies all entries of other into d. When overwrite is false, keys
// already present in d keep their current values.
func (d *AdditionalData) Merge(other *AdditionalData, overwrite bool) {
	if other == nil {
		return
	}
	if d.data == nil {
		d.data = make(map[string][]Value)
	}
	for key, values := range other.data {
		if !overwrite {
			if _, ok := d.data[key]; ok {
				continue
			}
		}
		d.data[key] = append([]Value(nil), values...)
	}
}

// HasData reports whether key is present.
func (d *AdditionalData) HasData(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.data[key]
	return ok
}

// IsEmpty reports whether no keys are present.
func (d *AdditionalData) IsEmpty() bool {
	return d == nil || len(d.data) == 0
}

// Keys returns all keys, sorted.
func (d *AdditionalData) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the value list stored under key.
func (d *AdditionalData) Values(key string) []Value {
	if d == nil {
		return nil
	}
	return append([]Value(nil), d.data[key]...)
}

// FirstString returns the first string value under key, or "".
func (d *AdditionalData) FirstString(key string) string {
	for _, v := range d.Values(key) {
		if v.kind == KindString {
			return v.str
		}
	}
	return ""
}

// FirstInt returns the first int value under key, or 0.
func (d *AdditionalData) FirstInt(key string) int64 {
	for _, v := range d.Values(key) {
		if v.kind == KindInt {
			return v.num
		}
	}
	return 0
}

// FirstBool returns the first bool value under key, or false.
func (d *AdditionalData) FirstBool(key string) bool {
	for _, v := range d.Values(key) {
		if v.kind == KindBool {
			return v.boolean
		}
	}
	return false
}

// FirstAmounts returns the first Amounts value under key.
func (d *AdditionalData) FirstAmounts(key string) (Amounts, bool) {
	for _, v := range d.Values(key) {
		if v.kind == KindAmounts {
			return v.amounts, true
		}
	}
	return Amounts{}, false
}

// FirstBasket returns the first Basket value under key.
func (d *AdditionalData) FirstBasket(key string) (*Basket, bool) {
	for _, v := range d.Values(key) {
		if v.kind == KindBasket && v.basket != nil {
			return v.basket, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (d *AdditionalData) Clone() *AdditionalData {
	out := NewAdditionalData()
	out.Merge(d, true)
	return out
}

func (d *AdditionalData) MarshalJSON() ([]byte, error) {
	if d == nil || d.data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.data)
}

func (d *AdditionalData) UnmarshalJSON(data []byte) error {
	m := make(map[string][]Value)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	d.data = m
	return nil
}
