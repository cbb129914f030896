package registers

import (
	"fmt"
	"regexp"
	"strings"
)

// HtmlGenerator produces a documentation HTML page for a register list.
type HtmlGenerator struct {
	registerList *RegisterList
}

// NewHtmlGenerator creates an HTML generator for the given register list.
func NewHtmlGenerator(registerList *RegisterList) *HtmlGenerator {
	return &HtmlGenerator{registerList: registerList}
}

// Strong: **double asterisks** or __double underscores__
// Emphasis: *single asterisks* or _single underscores_
// Literal asterisks or underscores are escaped: \* \_
var (
	strongPattern1 = regexp.MustCompile(`\*\*(.*?)\*\*`)
	strongPattern2 = regexp.MustCompile(`__(.*?)__`)
	emPattern1     = regexp.MustCompile(`\*(.*?)\*`)
	emPattern2     = regexp.MustCompile(`_(.*?)_`)
)

// Placeholders for escaped literals. Go regexps have no lookbehind, so the
// escaped characters are swapped out before substitution and restored after.
const (
	literalAsterisk   = "\x00ast\x00"
	literalUnderscore = "\x00und\x00"
)

// renderMarkdown applies a minimal markdown subset to a description string.
// Strong is substituted before emphasis so that "**a**" is never partially
// matched by the emphasis pattern.
func renderMarkdown(text string) string {
	text = strings.ReplaceAll(text, `\*`, literalAsterisk)
	text = strings.ReplaceAll(text, `\_`, literalUnderscore)

	text = strongPattern1.ReplaceAllString(text, "<b>$1</b>")
	text = strongPattern2.ReplaceAllString(text, "<b>$1</b>")
	text = emPattern1.ReplaceAllString(text, "<em>$1</em>")
	text = emPattern2.ReplaceAllString(text, "<em>$1</em>")

	text = strings.ReplaceAll(text, literalAsterisk, "*")
	text = strings.ReplaceAll(text, literalUnderscore, "_")
	return text
}

func comment(text string) string {
	return fmt.Sprintf("<!-- %s -->\n", text)
}

func (generator *HtmlGenerator) header() string {
	html := comment(generator.registerList.GeneratedInfo())
	html += comment(generator.registerList.GeneratedSourceInfo())
	return html
}

func (generator *HtmlGenerator) annotateRegister(register *Register) string {
	description := renderMarkdown(register.Description)
	return fmt.Sprintf(`
  <tr>
    <td><strong>%s</strong></td>
    <td>%d</td>
    <td>%s</td>
    <td>%s</td>
  </tr>`, register.Name, register.Address(), register.ModeReadable(), description)
}

func (generator *HtmlGenerator) annotateBit(bit *Bit) string {
	description := renderMarkdown(bit.Description)
	return fmt.Sprintf(`
  <tr>
    <td>&nbsp;&nbsp;<em>%s</em></td>
    <td>%d</td>
    <td></td>
    <td>%s</td>
  </tr>`, bit.Name, bit.Index, description)
}

func (generator *HtmlGenerator) registerTable() string {
	html := `
<table>
<thead>
  <tr>
    <th>Name</th>
    <th>Address</th>
    <th>Mode</th>
    <th>Description</th>
  </tr>
</thead>
<tbody>`

	for _, register := range generator.registerList.Registers() {
		html += generator.annotateRegister(register)
		for _, bit := range register.Bits {
			html += generator.annotateBit(bit)
		}
	}

	for _, array := range generator.registerList.RegisterArrays() {
		html += fmt.Sprintf(`
  <tr>
    <td colspan="4">Register array <strong>%s</strong>, repeated %d times</td>
  </tr>`, array.Name, array.Length)
		for _, register := range array.Registers {
			html += generator.annotateRegister(register)
			for _, bit := range register.Bits {
				html += generator.annotateBit(bit)
			}
		}
	}

	html += `
</tbody>
</table>`

	return html
}

// GetTable returns the register table with a generation header.
func (generator *HtmlGenerator) GetTable() string {
	return generator.header() + generator.registerTable()
}

func modeDescriptions() string {
	html := `
<table>
<thead>
  <tr>
    <th>Mode</th>
    <th>Description</th>
  </tr>
</thead>
<tbody>`

	for _, mode := range Modes {
		html += fmt.Sprintf(`
<tr>
  <td>%s</td>
  <td>%s</td>
</tr>
`, mode.Readable, mode.Description)
	}

	html += `
</tbody>
</table>`
	return html
}

const defaultFontStyle = `
html * {
  font-family: "Trebuchet MS", Arial, Helvetica, sans-serif;
}`

const defaultTableStyle = `
table {
  border-collapse: collapse;
}
td, th {
  border: 1px solid #ddd;
  padding: 8px;
}
tr:nth-child(even) {
  background-color: #f2f2f2;
}
tr:hover {
  background-color: #ddd;
}
th {
  padding-top: 12px;
  padding-bottom: 12px;
  text-align: left;
  background-color: #4CAF50;
  color: white;
}`

// GetPage returns a complete documentation HTML page with mode and
// register tables.
func (generator *HtmlGenerator) GetPage() string {
	moduleName := generator.registerList.Name
	title := fmt.Sprintf("Documentation of %s registers", moduleName)
	footer := generator.registerList.GeneratedSourceInfo()

	return fmt.Sprintf(`
%s
<!DOCTYPE html>
<html>
<head>
  <title>%s</title>
  <style>
%s
%s
  </style>
</head>
<body>
  <h1>%s</h1>
  <p>This document is a specification of the register interface of the %s module.</p>
  <h2>Register modes</h2>
  <p>The following register modes are available.</p>
%s
  <h2>Register map</h2>
  <p>The following registers make up the register map for the %s module.</p>
%s
<p>%s</p>
</body>
</html>`,
		generator.header(),
		title,
		defaultFontStyle,
		defaultTableStyle,
		title,
		moduleName,
		modeDescriptions(),
		moduleName,
		generator.registerTable(),
		footer)
}
