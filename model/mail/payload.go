package mail

import (
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/id"
)

// Payload is a package item; each category has exactly one payload type
type Payload interface {
	Category() Category
	payload()
}

type (
	// Message carries conversational content
	Message struct {
		Role    string      `json:"role,omitempty" yaml:"role,omitempty"`
		Content interface{} `json:"content,omitempty" yaml:"content,omitempty"`
	}

	// Tool carries a tool definition
	Tool struct {
		Name       string      `json:"name" yaml:"name"`
		Definition interface{} `json:"definition,omitempty" yaml:"definition,omitempty"`
	}

	// IModel carries a model endpoint reference
	IModel struct {
		Provider string                 `json:"provider,omitempty" yaml:"provider,omitempty"`
		Model    string                 `json:"model" yaml:"model"`
		Config   map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
	}

	// Node carries a graph node
	Node struct {
		Node element.Entity `json:"node" yaml:"node"`
	}

	// NodeList carries graph nodes
	NodeList struct {
		Nodes []element.Entity `json:"nodes" yaml:"nodes"`
	}

	// NodeID references a graph node
	NodeID struct {
		ID id.ID `json:"id" yaml:"id"`
	}

	// Start signals the beginning of a flow
	Start struct {
		Context interface{} `json:"context,omitempty" yaml:"context,omitempty"`
	}

	// End signals the end of a flow
	End struct {
		Result interface{} `json:"result,omitempty" yaml:"result,omitempty"`
	}

	// Condition carries a routing condition
	Condition struct {
		Expression string                 `json:"expression" yaml:"expression"`
		Args       map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
	}

	// Signal carries a named control value
	Signal struct {
		Name  string      `json:"name" yaml:"name"`
		Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	}
)

func (Message) Category() Category   { return CategoryMessage }
func (Tool) Category() Category      { return CategoryTool }
func (IModel) Category() Category    { return CategoryIModel }
func (Node) Category() Category      { return CategoryNode }
func (NodeList) Category() Category  { return CategoryNodeList }
func (NodeID) Category() Category    { return CategoryNodeID }
func (Start) Category() Category     { return CategoryStart }
func (End) Category() Category       { return CategoryEnd }
func (Condition) Category() Category { return CategoryCondition }
func (Signal) Category() Category    { return CategorySignal }

func (Message) payload()   {}
func (Tool) payload()      {}
func (IModel) payload()    {}
func (Node) payload()      {}
func (NodeList) payload()  {}
func (NodeID) payload()    {}
func (Start) payload()     {}
func (End) payload()       {}
func (Condition) payload() {}
func (Signal) payload()    {}
