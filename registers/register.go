package registers

import (
	"fmt"

	"github.com/pkg/errors"
)

// Mode describes how a register can be accessed from the register bus.
type Mode struct {
	// Shorthand is the mode name used in register definition files.
	Shorthand string
	// Readable is the human-readable mode name.
	Readable string
	// Description explains the mode behavior.
	Description string
}

// Modes lists all valid register modes, in documentation order.
var Modes = []Mode{
	{
		Shorthand:   "r",
		Readable:    "Read",
		Description: "Bus can read a value that the FPGA provides.",
	},
	{
		Shorthand:   "w",
		Readable:    "Write",
		Description: "Bus can write a value that is used within the FPGA.",
	},
	{
		Shorthand:   "r_w",
		Readable:    "Read, Write",
		Description: "Bus can write a value and read it back. The value is used within the FPGA.",
	},
	{
		Shorthand:   "wpulse",
		Readable:    "Write-pulse",
		Description: "Bus can write a value that is asserted for one clock cycle within the FPGA.",
	},
	{
		Shorthand: "r_wpulse",
		Readable:  "Read, Write-pulse",
		Description: "Bus can read a value that the FPGA provides. " +
			"Bus can write a value that is asserted for one clock cycle within the FPGA.",
	},
}

// GetMode returns the mode with the given shorthand name.
func GetMode(shorthand string) (Mode, error) {
	for _, mode := range Modes {
		if mode.Shorthand == shorthand {
			return mode, nil
		}
	}
	return Mode{}, errors.Errorf("invalid register mode '%s'", shorthand)
}

// Bit is a single bit field within a register.
type Bit struct {
	Name        string
	Index       int
	Description string
	// DefaultValue is the binary default value, "0" or "1".
	DefaultValue string
}

// NewBit creates a bit field after validating the default value.
func NewBit(name string, index int, description string, defaultValue string) (*Bit, error) {
	bit := &Bit{
		Name:        name,
		Index:       index,
		Description: description,
		DefaultValue: func() string {
			if defaultValue == "" {
				return "0"
			}
			return defaultValue
		}(),
	}
	if bit.DefaultValue != "0" && bit.DefaultValue != "1" {
		return nil, errors.Errorf(
			`bit "%s" invalid binary value for "default_value": got "%s"`, name, defaultValue)
	}
	return bit, nil
}

// Value extracts the value of this bit from a register value.
func (bit *Bit) Value(registerValue uint32) uint32 {
	return (registerValue >> uint(bit.Index)) & 1
}

// DefaultValueUint returns the default value as an unsigned integer.
func (bit *Bit) DefaultValueUint() uint32 {
	if bit.DefaultValue == "1" {
		return 1
	}
	return 0
}

// Register is a single 32-bit register.
type Register struct {
	Name        string
	Index       int
	Mode        string
	Description string
	Bits        []*Bit
}

// NewRegister creates a register after validating the mode.
func NewRegister(name string, index int, mode string, description string) (*Register, error) {
	if _, err := GetMode(mode); err != nil {
		return nil, errors.Wrapf(err, `register "%s"`, name)
	}
	return &Register{
		Name:        name,
		Index:       index,
		Mode:        mode,
		Description: description,
	}, nil
}

// Address returns the byte address of this register on the bus.
func (register *Register) Address() int {
	return 4 * register.Index
}

// ModeReadable returns the human-readable name of the register mode.
func (register *Register) ModeReadable() string {
	mode, err := GetMode(register.Mode)
	if err != nil {
		return register.Mode
	}
	return mode.Readable
}

// AppendBit adds a bit field to this register. The bit index is the next free one.
func (register *Register) AppendBit(name string, description string, defaultValue string) (*Bit, error) {
	bit, err := NewBit(name, len(register.Bits), description, defaultValue)
	if err != nil {
		return nil, err
	}
	register.Bits = append(register.Bits, bit)
	return bit, nil
}

// GetBit returns the bit field with the given name, or nil.
func (register *Register) GetBit(name string) *Bit {
	for _, bit := range register.Bits {
		if bit.Name == name {
			return bit
		}
	}
	return nil
}

func (register *Register) String() string {
	return fmt.Sprintf("%s:%d:%s", register.Name, register.Index, register.Mode)
}

// RegisterArray is a sequence of registers that is repeated a number of times.
type RegisterArray struct {
	Name      string
	BaseIndex int
	Length    int
	Registers []*Register
}

// AppendRegister adds a register to this array.
func (array *RegisterArray) AppendRegister(name string, mode string, description string) (*Register, error) {
	register, err := NewRegister(name, len(array.Registers), mode, description)
	if err != nil {
		return nil, err
	}
	array.Registers = append(array.Registers, register)
	return register, nil
}

// Constant is a named integer value attached to a register list.
type Constant struct {
	Name        string
	Value       int
	Description string
}

// registerObject is implemented by Register and RegisterArray.
type registerObject interface {
	// nextIndex is the register index following this object.
	nextIndex() int
}

func (register *Register) nextIndex() int {
	return register.Index + 1
}

func (array *RegisterArray) nextIndex() int {
	return array.BaseIndex + array.Length*len(array.Registers)
}
