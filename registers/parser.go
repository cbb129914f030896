package registers

import (
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/util"
)

// defNode is one object level of a register definition file. Definition
// order matters (register indexes and bit indexes are assigned in order),
// so keys are kept in file order.
type defNode struct {
	order  []string
	values map[string]interface{}
}

func newDefNode() *defNode {
	return &defNode{values: map[string]interface{}{}}
}

func (node *defNode) insert(key string, value interface{}) error {
	if _, ok := node.values[key]; ok {
		return errors.Errorf("duplicate key '%s'", key)
	}
	node.order = append(node.order, key)
	node.values[key] = value
	return nil
}

func (node *defNode) child(key string) *defNode {
	if child, ok := node.values[key].(*defNode); ok {
		return child
	}
	return nil
}

func (node *defNode) stringValue(key string) (string, bool) {
	value, ok := node.values[key].(string)
	return value, ok
}

func (node *defNode) intValue(key string) (int, bool) {
	switch value := node.values[key].(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	}
	return 0, false
}

func (node *defNode) has(key string) bool {
	_, ok := node.values[key]
	return ok
}

// FromToml parses a TOML register definition file into a register list.
// The defaultRegisters are copied into the list before parsing.
func FromToml(moduleName string, tomlFile string, defaultRegisters []*Register) (*RegisterList, error) {
	data, err := util.ReadFile(tomlFile)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	metaData, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrapf(err, "error while parsing TOML file %s", tomlFile)
	}

	root := tomlNode(raw, metaData.Keys(), nil)
	return fromDefNode(moduleName, tomlFile, root, defaultRegisters)
}

// tomlNode converts a decoded TOML map into a defNode tree, using the
// decoder metadata to recover file order.
func tomlNode(raw map[string]interface{}, keys []toml.Key, prefix []string) *defNode {
	node := newDefNode()
	for _, name := range tomlChildOrder(keys, prefix) {
		value, ok := raw[name]
		if !ok {
			continue
		}
		if childMap, isMap := value.(map[string]interface{}); isMap {
			childPrefix := append(append([]string{}, prefix...), name)
			node.insert(name, tomlNode(childMap, keys, childPrefix))
		} else {
			node.insert(name, value)
		}
	}
	return node
}

func tomlChildOrder(keys []toml.Key, prefix []string) []string {
	seen := map[string]bool{}
	order := []string{}
	for _, key := range keys {
		if len(key) <= len(prefix) {
			continue
		}
		matches := true
		for i, part := range prefix {
			if key[i] != part {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}
		child := key[len(prefix)]
		if !seen[child] {
			seen[child] = true
			order = append(order, child)
		}
	}
	return order
}

// FromJSON parses a JSON register definition file into a register list.
// Duplicate keys are an error.
func FromJSON(moduleName string, jsonFile string, defaultRegisters []*Register) (*RegisterList, error) {
	data, err := util.ReadFile(jsonFile)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	token, err := decoder.Token()
	if err != nil {
		return nil, errors.Wrapf(err, "error while parsing JSON file %s", jsonFile)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("error while parsing JSON file %s: top level must be an object", jsonFile)
	}

	root, err := jsonNode(decoder)
	if err != nil {
		return nil, errors.Wrapf(err, "error while parsing JSON file %s", jsonFile)
	}

	return fromDefNode(moduleName, jsonFile, root, defaultRegisters)
}

// jsonNode reads object members from the decoder until the closing brace.
// The opening brace must already have been consumed.
func jsonNode(decoder *json.Decoder) (*defNode, error) {
	node := newDefNode()
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := token.(json.Delim); ok && delim == '}' {
			return node, nil
		}

		key, ok := token.(string)
		if !ok {
			return nil, errors.Errorf("unexpected token %v", token)
		}

		value, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		if delim, isDelim := value.(json.Delim); isDelim {
			if delim != '{' {
				return nil, errors.Errorf("unexpected token %v", delim)
			}
			child, err := jsonNode(decoder)
			if err != nil {
				return nil, err
			}
			if err := node.insert(key, child); err != nil {
				return nil, err
			}
			continue
		}
		if err := node.insert(key, value); err != nil {
			return nil, err
		}
	}
}

func fromDefNode(
	moduleName string,
	sourceFile string,
	root *defNode,
	defaultRegisters []*Register,
) (*RegisterList, error) {
	list := NewRegisterList(moduleName, sourceFile)

	defaultNames := map[string]bool{}
	for _, register := range defaultRegisters {
		copied := *register
		copied.Bits = append([]*Bit{}, register.Bits...)
		list.registerObjects = append(list.registerObjects, &copied)
		defaultNames[register.Name] = true
	}

	for _, name := range root.order {
		item := root.child(name)
		if item == nil {
			return nil, errors.Errorf("%s in %s must be an object", name, sourceFile)
		}

		if item.has("registers") {
			if err := parseRegisterArray(name, item, list, sourceFile); err != nil {
				return nil, err
			}
			continue
		}
		if err := parsePlainRegister(name, item, list, defaultNames, sourceFile); err != nil {
			return nil, err
		}
	}

	return list, nil
}

func parsePlainRegister(
	name string,
	item *defNode,
	list *RegisterList,
	defaultNames map[string]bool,
	sourceFile string,
) error {
	if item.has("array_length") {
		return errors.Errorf(
			"plain register %s in %s can not have array_length attribute", name, sourceFile)
	}

	var register *Register
	if defaultNames[name] {
		// Default registers can be "updated" in the sense that the user can use
		// a custom description and add whatever bits they use in the current
		// module. They can not however change the mode.
		if item.has("mode") {
			return errors.Errorf(
				"overloading register %s in %s, one can not change mode from default", name, sourceFile)
		}
		register = list.GetRegister(name)
	} else {
		mode, ok := item.stringValue("mode")
		if !ok {
			return errors.Errorf("register %s in %s does not have mode field", name, sourceFile)
		}
		appended, err := list.AppendRegister(name, mode, "")
		if err != nil {
			return err
		}
		register = appended
	}

	if description, ok := item.stringValue("description"); ok {
		register.Description = description
	}

	return parseBits(register, item.child("bits"))
}

func parseRegisterArray(name string, item *defNode, list *RegisterList, sourceFile string) error {
	length, ok := item.intValue("array_length")
	if !ok {
		return errors.Errorf(
			"register array %s in %s does not have array_length attribute", name, sourceFile)
	}

	array := list.AppendRegisterArray(name, length)

	registersNode := item.child("registers")
	if registersNode == nil {
		return errors.Errorf("register array %s in %s has invalid registers field", name, sourceFile)
	}

	for _, registerName := range registersNode.order {
		registerItem := registersNode.child(registerName)
		if registerItem == nil {
			return errors.Errorf(
				"register %s within array %s in %s must be an object", registerName, name, sourceFile)
		}

		mode, ok := registerItem.stringValue("mode")
		if !ok {
			return errors.Errorf(
				"register %s within array %s in %s does not have mode field", registerName, name, sourceFile)
		}

		description, _ := registerItem.stringValue("description")
		register, err := array.AppendRegister(registerName, mode, description)
		if err != nil {
			return err
		}

		if err := parseBits(register, registerItem.child("bits")); err != nil {
			return err
		}
	}

	return nil
}

// parseBits adds the bit fields of a register. A bit is either a plain
// description string or an object with description and default_value.
func parseBits(register *Register, bits *defNode) error {
	if bits == nil {
		return nil
	}

	for _, bitName := range bits.order {
		if description, ok := bits.stringValue(bitName); ok {
			if _, err := register.AppendBit(bitName, description, ""); err != nil {
				return err
			}
			continue
		}

		bitItem := bits.child(bitName)
		if bitItem == nil {
			return errors.Errorf(
				`bit "%s" of register "%s" must be a description string or an object`,
				bitName, register.Name)
		}
		description, _ := bitItem.stringValue("description")
		defaultValue, _ := bitItem.stringValue("default_value")
		if _, err := register.AppendBit(bitName, description, defaultValue); err != nil {
			return err
		}
	}

	return nil
}
