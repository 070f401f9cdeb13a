package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specValues(specs []Specifier) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Value)
	}
	return out
}

// checkOffsets verifies that every specifier's offset points at its text.
func checkOffsets(t *testing.T, src string, specs []Specifier) {
	t.Helper()
	for _, s := range specs {
		require.LessOrEqual(t, s.End(), len(src))
		assert.Equal(t, s.Value, src[s.Offset:s.End()], "offset %d", s.Offset)
	}
}

func TestParseSpecifiersForms(t *testing.T) {
	src := `import React from 'react'
import { a, b } from "./a"
import * as ns from './ns.js'
import './side-effect'
export { x } from './x'
export * from '../y'
const c = require('./c')
const d = await import('./d')
`
	specs := ParseSpecifiers([]byte(src))
	assert.Equal(t, []string{"react", "./a", "./ns.js", "./side-effect", "./x", "../y", "./c", "./d"}, specValues(specs))
	checkOffsets(t, src, specs)

	kinds := make([]SpecifierKind, 0, len(specs))
	for _, s := range specs {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []SpecifierKind{
		KindDeclaration, KindDeclaration, KindDeclaration, KindDeclaration,
		KindDeclaration, KindDeclaration, KindLiteral, KindLiteral,
	}, kinds)

	lines := make([]int, 0, len(specs))
	for _, s := range specs {
		lines = append(lines, s.Line)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, lines)
}

func TestParseSpecifiersSkipsLookalikes(t *testing.T) {
	src := "// import z from './z'\n" +
		"/* require('./w') */\n" +
		"const s = \"import q from './q'\"\n" +
		"const t = `import v from './v'`\n" +
		"const re = /from '\\.\\/r'/g\n" +
		"obj.require('./m')\n" +
		"console.log(import.meta.url)\n" +
		"import real from './real'\n"
	specs := ParseSpecifiers([]byte(src))
	assert.Equal(t, []string{"./real"}, specValues(specs))
	checkOffsets(t, src, specs)
	assert.Equal(t, 8, specs[0].Line)
}

func TestParseSpecifiersMultiline(t *testing.T) {
	src := "import {\n  a,\n  b,\n} from './multi'\n"
	specs := ParseSpecifiers([]byte(src))
	require.Len(t, specs, 1)
	assert.Equal(t, "./multi", specs[0].Value)
	assert.Equal(t, 4, specs[0].Line)
	checkOffsets(t, src, specs)
}

func TestParseSpecifiersDivisionIsNotRegex(t *testing.T) {
	src := "const r = a / b / c\nimport x from './after'\n"
	assert.Equal(t, []string{"./after"}, specValues(ParseSpecifiers([]byte(src))))
}

func TestParseSpecifiersTemplateSubstitution(t *testing.T) {
	src := "const msg = `${'}'} ${`nested ${x}`}`\nconst y = require('./y')\n"
	specs := ParseSpecifiers([]byte(src))
	assert.Equal(t, []string{"./y"}, specValues(specs))
	checkOffsets(t, src, specs)
}

func TestParseSpecifiersShebang(t *testing.T) {
	src := "#!/usr/bin/env node\nconst cli = require('./cli')\n"
	specs := ParseSpecifiers([]byte(src))
	require.Len(t, specs, 1)
	assert.Equal(t, "./cli", specs[0].Value)
	assert.Equal(t, 2, specs[0].Line)
}

func TestParseSpecifiersRequireWithOptions(t *testing.T) {
	src := "const x = require('./x', { paths: [] })\nrequire(name)\n"
	assert.Equal(t, []string{"./x"}, specValues(ParseSpecifiers([]byte(src))))
}

func TestParseSpecifiersExportWithoutFrom(t *testing.T) {
	src := "export default function () {}\nconst from = 'x'\nexport const y = 1\n"
	assert.Empty(t, ParseSpecifiers([]byte(src)))
}

func TestParseSpecifiersUnterminatedString(t *testing.T) {
	src := "const bad = 'oops\nimport ok from './ok'\n"
	assert.Equal(t, []string{"./ok"}, specValues(ParseSpecifiers([]byte(src))))
}

func TestParseSpecifiersInsideSubstitution(t *testing.T) {
	src := "const s = `${require('./b')} and ${import('./c')}`\nconst n = `${{a: 1}.a}`\n"
	specs := ParseSpecifiers([]byte(src))
	assert.Equal(t, []string{"./b", "./c"}, specValues(specs))
	checkOffsets(t, src, specs)
}

func TestParseSpecifiersJSXText(t *testing.T) {
	src := "const A = () => <p>Don't</p>; const b = require('./b')\n" +
		"const C = () => (\n" +
		"  <div className=\"it's\">\n" +
		"    <Img src={require('./img')} />\n" +
		"    it's {items.map(i => <li key={i}>{i}</li>)}\n" +
		"  </div>\n" +
		")\n" +
		"const d = require('./d')\n"
	specs := ParseSpecifiers([]byte(src))
	assert.Equal(t, []string{"./b", "./img", "./d"}, specValues(specs))
	checkOffsets(t, src, specs)
	assert.Equal(t, []int{1, 4, 8}, []int{specs[0].Line, specs[1].Line, specs[2].Line})
}

func TestParseSpecifiersFragment(t *testing.T) {
	src := "const F = () => <>won't</>\nimport x from './x'\n"
	assert.Equal(t, []string{"./x"}, specValues(ParseSpecifiers([]byte(src))))
}

func TestParseSpecifiersUnclosedAngleIsNotJSX(t *testing.T) {
	src := "const id = <T,>(x) => x\nconst s = 'it'\nconst y = require('./y')\n"
	assert.Equal(t, []string{"./y"}, specValues(ParseSpecifiers([]byte(src))))
}

func TestParseFileTypeScriptAssertion(t *testing.T) {
	src := "const v = <string>raw; const q = 'x'\nimport y from './y'\n"
	assert.Equal(t, []string{"./y"}, specValues(parseFile("a.ts", []byte(src))))
}
