package registers

import (
	"fmt"
	"path"
	"time"

	"github.com/ru551n/tsfpga/vcs"
)

// RegisterList holds the registers of one module. Also known as a register map.
type RegisterList struct {
	// Name of the register list. Typically the name of the module that uses it.
	Name string
	// SourceDefinitionFile is the TOML/JSON file that defined this register list.
	SourceDefinitionFile string

	registerObjects []registerObject
	constants       []*Constant
}

// NewRegisterList creates an empty register list.
func NewRegisterList(name string, sourceDefinitionFile string) *RegisterList {
	return &RegisterList{
		Name:                 name,
		SourceDefinitionFile: sourceDefinitionFile,
	}
}

// AppendRegister adds a register at the next free index.
func (list *RegisterList) AppendRegister(name string, mode string, description string) (*Register, error) {
	register, err := NewRegister(name, list.nextIndex(), mode, description)
	if err != nil {
		return nil, err
	}
	list.registerObjects = append(list.registerObjects, register)
	return register, nil
}

// AppendRegisterArray adds a register array at the next free index.
// The register sequence of the array is repeated length times.
func (list *RegisterList) AppendRegisterArray(name string, length int) *RegisterArray {
	array := &RegisterArray{
		Name:      name,
		BaseIndex: list.nextIndex(),
		Length:    length,
	}
	list.registerObjects = append(list.registerObjects, array)
	return array
}

func (list *RegisterList) nextIndex() int {
	if len(list.registerObjects) == 0 {
		return 0
	}
	return list.registerObjects[len(list.registerObjects)-1].nextIndex()
}

// GetRegister returns the plain register with the given name. Registers
// within arrays are not found. Returns nil if no register matched.
func (list *RegisterList) GetRegister(name string) *Register {
	for _, object := range list.registerObjects {
		if register, ok := object.(*Register); ok && register.Name == name {
			return register
		}
	}
	return nil
}

// Registers returns all plain registers, in definition order.
func (list *RegisterList) Registers() []*Register {
	result := []*Register{}
	for _, object := range list.registerObjects {
		if register, ok := object.(*Register); ok {
			result = append(result, register)
		}
	}
	return result
}

// RegisterArrays returns all register arrays, in definition order.
func (list *RegisterList) RegisterArrays() []*RegisterArray {
	result := []*RegisterArray{}
	for _, object := range list.registerObjects {
		if array, ok := object.(*RegisterArray); ok {
			result = append(result, array)
		}
	}
	return result
}

// NumRegisters returns the total number of register slots, arrays expanded.
func (list *RegisterList) NumRegisters() int {
	return list.nextIndex()
}

// AddConstant attaches a named integer constant to this register list.
func (list *RegisterList) AddConstant(name string, value int, description string) *Constant {
	constant := &Constant{Name: name, Value: value, Description: description}
	list.constants = append(list.constants, constant)
	return constant
}

// Constants returns all constants, in definition order.
func (list *RegisterList) Constants() []*Constant {
	return list.constants
}

// GeneratedInfo returns a string informing the user that a file is
// automatically generated.
func (list *RegisterList) GeneratedInfo() string {
	return "File automatically generated by tsfpga."
}

// GeneratedSourceInfo returns a string informing the user that a file is
// automatically generated, containing info about the source of the generated
// register information.
func (list *RegisterList) GeneratedSourceInfo() string {
	timeInfo := time.Now().Format("2006-01-02 15:04")

	commitInfo := ""
	if list.SourceDefinitionFile != "" {
		if info := vcs.CommitInformation(path.Dir(list.SourceDefinitionFile)); info != "" {
			commitInfo = " at " + info
		}
	}

	return fmt.Sprintf(
		"Generated %s from file %s%s.", timeInfo, path.Base(list.SourceDefinitionFile), commitInfo)
}

// DefaultRegisters returns the registers that all modules with a register bus
// are assumed to have.
func DefaultRegisters() []*Register {
	configRegister, _ := NewRegister("config", 0, "r_w", "Configuration register.")
	commandRegister, _ := NewRegister(
		"command", 1, "wpulse",
		"When this register is written, all '1's in the written word will be asserted for one "+
			"clock cycle in the FPGA logic.")
	statusRegister, _ := NewRegister("status", 2, "r", "Status register.")
	irqStatusRegister, _ := NewRegister(
		"irq_status", 3, "r_wpulse",
		"Reading a '1' in this register means the corresponding interrupt has triggered. Writing "+
			"to this register will clear the interrupts where there is a '1' in the written word.")
	irqMaskRegister, _ := NewRegister(
		"irq_mask", 4, "r_w",
		"A '1' in this register means that the corresponding interrupt is enabled.")

	return []*Register{
		configRegister,
		commandRegister,
		statusRegister,
		irqStatusRegister,
		irqMaskRegister,
	}
}
