package mail

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/structology/conv"
)

var converter = conv.NewConverter(conv.DefaultOptions())

// Package is an immutable categorized payload
type Package struct {
	element.Element
	category      Category
	item          Payload
	requestSource *id.ID
}

// NewPackage creates a package. The item is either the category payload or a
// raw value wrapped into it. Maps whose keys all name payload fields are
// decoded into the payload struct; other maps are carried whole as message
// content, start context or end result, and rejected by the remaining categories.
// A nil requestSource leaves the package without a request source.
func NewPackage(category Category, item interface{}, requestSource interface{}) (*Package, error) {
	payload, err := wrap(category, item)
	if err != nil {
		return nil, err
	}
	ret := &Package{Element: element.New(), category: category, item: payload}
	if requestSource != nil {
		source, err := id.Of(requestSource)
		if err != nil {
			return nil, err
		}
		ret.requestSource = &source
	}
	return ret, nil
}

// Category returns package category
func (p *Package) Category() Category {
	return p.category
}

// Item returns package payload
func (p *Package) Item() Payload {
	return p.item
}

// RequestSource returns the identifier of the requesting source if set
func (p *Package) RequestSource() (id.ID, bool) {
	if p.requestSource == nil {
		return id.Nil, false
	}
	return *p.requestSource, true
}

// Decode converts the payload into dest, dest has to be a pointer
func (p *Package) Decode(dest interface{}) error {
	if dest == nil || reflect.TypeOf(dest).Kind() != reflect.Ptr {
		return errs.Validation("decode destination has to be a pointer, got %T", dest)
	}
	target := reflect.ValueOf(dest).Elem()
	if source := reflect.ValueOf(p.item); source.Type().AssignableTo(target.Type()) {
		target.Set(source)
		return nil
	}
	if err := converter.Convert(p.item, dest); err != nil {
		return errs.Validation("failed to decode %v package into %T: %v", p.category, dest, err)
	}
	return nil
}

// MarshalJSON encodes the package with its payload
func (p *Package) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            id.ID                  `json:"id"`
		CreatedAt     time.Time              `json:"created_at"`
		Metadata      map[string]interface{} `json:"metadata,omitempty"`
		Category      Category               `json:"category"`
		Item          Payload                `json:"item"`
		RequestSource *id.ID                 `json:"request_source,omitempty"`
	}{p.ID, p.CreatedAt, p.Metadata, p.category, p.item, p.requestSource})
}

func wrap(category Category, item interface{}) (Payload, error) {
	if !category.IsValid() {
		return nil, errs.Validation("invalid package category: %d", int(category))
	}
	if item == nil {
		return nil, errs.Validation("%v package item was nil", category)
	}
	if payload, ok := asPayload(item); ok {
		if payload.Category() != category {
			return nil, errs.Validation("%T payload does not match %v category", item, category)
		}
		return payload, nil
	}
	if values, ok := item.(map[string]interface{}); ok {
		return decode(category, values)
	}
	switch category {
	case CategoryMessage:
		return Message{Content: item}, nil
	case CategoryTool:
		if name, ok := item.(string); ok {
			return Tool{Name: name}, nil
		}
	case CategoryIModel:
		if model, ok := item.(string); ok {
			return IModel{Model: model}, nil
		}
	case CategoryNode:
		if node, ok := item.(element.Entity); ok {
			return Node{Node: node}, nil
		}
	case CategoryNodeList:
		if nodes, ok := item.([]element.Entity); ok {
			return NodeList{Nodes: nodes}, nil
		}
	case CategoryNodeID:
		ref, err := id.Of(item)
		if err != nil {
			return nil, err
		}
		return NodeID{ID: ref}, nil
	case CategoryStart:
		return Start{Context: item}, nil
	case CategoryEnd:
		return End{Result: item}, nil
	case CategoryCondition:
		if expression, ok := item.(string); ok {
			return Condition{Expression: expression}, nil
		}
	case CategorySignal:
		if name, ok := item.(string); ok {
			return Signal{Name: name}, nil
		}
	}
	return nil, errs.Validation("unsupported %v package item: %T", category, item)
}

func asPayload(item interface{}) (Payload, bool) {
	value := reflect.ValueOf(item)
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, false
		}
		item = value.Elem().Interface()
	}
	payload, ok := item.(Payload)
	return payload, ok
}

func decode(category Category, values map[string]interface{}) (Payload, error) {
	var target interface{}
	switch category {
	case CategoryMessage:
		target = &Message{}
	case CategoryTool:
		target = &Tool{}
	case CategoryIModel:
		target = &IModel{}
	case CategoryNode:
		target = &Node{}
	case CategoryNodeList:
		target = &NodeList{}
	case CategoryNodeID:
		target = &NodeID{}
	case CategoryStart:
		target = &Start{}
	case CategoryEnd:
		target = &End{}
	case CategoryCondition:
		target = &Condition{}
	case CategorySignal:
		target = &Signal{}
	}
	if unknown := unknownFields(target, values); len(unknown) > 0 {
		switch category {
		case CategoryMessage:
			return Message{Content: values}, nil
		case CategoryStart:
			return Start{Context: values}, nil
		case CategoryEnd:
			return End{Result: values}, nil
		}
		return nil, errs.Validation("unknown %v package item fields: %v", category, strings.Join(unknown, ", "))
	}
	if err := converter.Convert(values, target); err != nil {
		return nil, errs.Validation("invalid %v package item: %v", category, err)
	}
	payload, _ := asPayload(target)
	return payload, nil
}

// unknownFields returns sorted map keys matching neither a field name nor a json tag of target
func unknownFields(target interface{}, values map[string]interface{}) []string {
	rType := reflect.TypeOf(target).Elem()
	known := make(map[string]bool, rType.NumField()*2)
	for i := 0; i < rType.NumField(); i++ {
		field := rType.Field(i)
		known[strings.ToLower(field.Name)] = true
		if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" && name != "-" {
			known[strings.ToLower(name)] = true
		}
	}
	var ret []string
	for key := range values {
		if !known[strings.ToLower(key)] {
			ret = append(ret, key)
		}
	}
	sort.Strings(ret)
	return ret
}
