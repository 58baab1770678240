package mail

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/id"
)

func TestParseCategory(t *testing.T) {
	for _, category := range Categories() {
		t.Run(category.String(), func(t *testing.T) {
			parsed, err := ParseCategory(category.String())
			require.NoError(t, err)
			assert.Equal(t, category, parsed)
		})
	}
	parsed, err := ParseCategory("NODE_LIST")
	require.NoError(t, err)
	assert.Equal(t, CategoryNodeList, parsed)
	_, err = ParseCategory("letter")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Len(t, Categories(), 10)
	assert.Equal(t, "unknown", Category(0).String())
}

func TestNewPackage(t *testing.T) {
	node := element.New()
	nodeID := id.New()
	testCases := []struct {
		description string
		category    Category
		item        interface{}
		expect      Payload
		expectErr   bool
	}{
		{description: "message text", category: CategoryMessage, item: "content", expect: Message{Content: "content"}},
		{description: "message payload", category: CategoryMessage, item: Message{Role: "user", Content: "hi"}, expect: Message{Role: "user", Content: "hi"}},
		{description: "message payload pointer", category: CategoryMessage, item: &Message{Role: "user"}, expect: Message{Role: "user"}},
		{description: "message map", category: CategoryMessage, item: map[string]interface{}{"text": "hello", "sender": "user"}, expect: Message{Content: map[string]interface{}{"text": "hello", "sender": "user"}}},
		{description: "message fields map", category: CategoryMessage, item: map[string]interface{}{"Role": "user", "Content": "hi"}, expect: Message{Role: "user", Content: "hi"}},
		{description: "start map", category: CategoryStart, item: map[string]interface{}{"goal": "plan"}, expect: Start{Context: map[string]interface{}{"goal": "plan"}}},
		{description: "end map", category: CategoryEnd, item: map[string]interface{}{"score": 0.9}, expect: End{Result: map[string]interface{}{"score": 0.9}}},
		{description: "tool map", category: CategoryTool, item: map[string]interface{}{"Name": "search"}, expect: Tool{Name: "search"}},
		{description: "tool map unknown field", category: CategoryTool, item: map[string]interface{}{"name": "search", "timeout": 3}, expectErr: true},
		{description: "tool name", category: CategoryTool, item: "search", expect: Tool{Name: "search"}},
		{description: "imodel name", category: CategoryIModel, item: "gpt", expect: IModel{Model: "gpt"}},
		{description: "node", category: CategoryNode, item: &node, expect: Node{Node: &node}},
		{description: "node list", category: CategoryNodeList, item: []element.Entity{&node}, expect: NodeList{Nodes: []element.Entity{&node}}},
		{description: "node id string", category: CategoryNodeID, item: nodeID.String(), expect: NodeID{ID: nodeID}},
		{description: "node id entity", category: CategoryNodeID, item: &node, expect: NodeID{ID: node.ID}},
		{description: "start", category: CategoryStart, item: 1, expect: Start{Context: 1}},
		{description: "end", category: CategoryEnd, item: "ok", expect: End{Result: "ok"}},
		{description: "condition", category: CategoryCondition, item: "x > 1", expect: Condition{Expression: "x > 1"}},
		{description: "signal", category: CategorySignal, item: "halt", expect: Signal{Name: "halt"}},
		{description: "mismatched payload", category: CategoryTool, item: Message{}, expectErr: true},
		{description: "nil item", category: CategoryMessage, item: nil, expectErr: true},
		{description: "invalid category", category: Category(42), item: "x", expectErr: true},
		{description: "unsupported item", category: CategoryTool, item: 3, expectErr: true},
		{description: "invalid node id", category: CategoryNodeID, item: "x", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			pkg, err := NewPackage(tc.category, tc.item, nil)
			if tc.expectErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.category, pkg.Category())
			assert.Equal(t, tc.expect, pkg.Item())
			assert.False(t, pkg.ID.IsNil())
			_, ok := pkg.RequestSource()
			assert.False(t, ok)
		})
	}
}

func TestPackage_RequestSource(t *testing.T) {
	source := id.New()
	pkg, err := NewPackage(CategorySignal, "go", source)
	require.NoError(t, err)
	actual, ok := pkg.RequestSource()
	assert.True(t, ok)
	assert.Equal(t, source, actual)

	_, err = NewPackage(CategorySignal, "go", "bad")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPackage_Accept(t *testing.T) {
	var visited []string
	visitor := &Visitor{
		Message: func(pkg *Package, payload Message) error {
			visited = append(visited, fmt.Sprintf("message:%v", payload.Content))
			return nil
		},
		Signal: func(pkg *Package, payload Signal) error {
			return fmt.Errorf("signal %v rejected", payload.Name)
		},
	}
	message, _ := NewPackage(CategoryMessage, "hi", nil)
	tool, _ := NewPackage(CategoryTool, "search", nil)
	signal, _ := NewPackage(CategorySignal, "halt", nil)

	handled, err := message.Accept(visitor)
	assert.True(t, handled)
	assert.NoError(t, err)
	assert.Equal(t, []string{"message:hi"}, visited)

	handled, err = tool.Accept(visitor)
	assert.False(t, handled)
	assert.NoError(t, err)

	handled, err = signal.Accept(visitor)
	assert.True(t, handled)
	assert.EqualError(t, err, "signal halt rejected")

	handled, err = message.Accept(nil)
	assert.False(t, handled)
	assert.NoError(t, err)
}

func TestPackage_Decode(t *testing.T) {
	pkg, err := NewPackage(CategoryTool, Tool{Name: "search", Definition: "web"}, nil)
	require.NoError(t, err)
	tool := Tool{}
	require.NoError(t, pkg.Decode(&tool))
	assert.Equal(t, Tool{Name: "search", Definition: "web"}, tool)
	var payload Payload
	require.NoError(t, pkg.Decode(&payload))
	assert.Equal(t, CategoryTool, payload.Category())
	assert.ErrorIs(t, pkg.Decode(tool), errs.ErrValidation)
}

func TestPackage_MarshalJSON(t *testing.T) {
	pkg, err := NewPackage(CategoryNodeList, []element.Entity{}, nil)
	require.NoError(t, err)
	data, err := json.Marshal(pkg)
	require.NoError(t, err)
	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "node_list", decoded["category"])
	assert.Equal(t, pkg.ID.String(), decoded["id"])
	assert.NotContains(t, decoded, "request_source")
}

func TestNew(t *testing.T) {
	sender, recipient := id.New(), id.New()
	pkg, err := NewPackage(CategoryMessage, "content", nil)
	require.NoError(t, err)

	testCases := []struct {
		description string
		sender      interface{}
		recipient   interface{}
		pkg         *Package
		expectErr   bool
	}{
		{description: "valid", sender: sender, recipient: recipient.String(), pkg: pkg},
		{description: "nil sender", sender: id.Nil, recipient: recipient, pkg: pkg, expectErr: true},
		{description: "bad recipient", sender: sender, recipient: "nope", pkg: pkg, expectErr: true},
		{description: "nil package", sender: sender, recipient: recipient, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := New(tc.sender, tc.recipient, tc.pkg)
			if tc.expectErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sender, actual.Sender)
			assert.Equal(t, recipient, actual.Recipient)
			assert.Equal(t, CategoryMessage, actual.Category())
		})
	}

	composed, err := Compose(sender, recipient, CategoryEnd, "done", sender)
	require.NoError(t, err)
	assert.Equal(t, CategoryEnd, composed.Category())
}
