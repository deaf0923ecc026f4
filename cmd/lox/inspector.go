package main

import (
	"fmt"
	"io"
	"strings"

	"lox/pkg/ast"
)

type ProgramInsights struct {
	Classes   []ClassInfo
	Functions []FunctionInfo
}

type ClassInfo struct {
	Name       string
	Superclass string
	Methods    []FunctionInfo
	Line       int
}

type FunctionInfo struct {
	Name       string
	Parameters []string
	Line       int
	Depth      int // 0 for top-level declarations
}

func analyzeProgram(program *ast.Program) ProgramInsights {
	insights := ProgramInsights{}
	depth := 0
	walk(program, func(node ast.Node, entering bool) {
		fn, isFn := node.(*ast.FunctionStatement)
		if isFn && !entering {
			depth--
			return
		}
		if !entering {
			return
		}

		switch n := node.(type) {
		case *ast.ClassStatement:
			info := ClassInfo{Name: n.Name.Lexeme, Line: n.Name.Line}
			if n.Superclass != nil {
				info.Superclass = n.Superclass.Name.Lexeme
			}
			for _, m := range n.Methods {
				info.Methods = append(info.Methods, describeFunction(m, depth))
			}
			insights.Classes = append(insights.Classes, info)
		}
		if isFn {
			insights.Functions = append(insights.Functions, describeFunction(fn, depth))
			depth++
		}
	})
	return insights
}

func describeFunction(fn *ast.FunctionStatement, depth int) FunctionInfo {
	params := make([]string, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		params = append(params, p.Lexeme)
	}
	return FunctionInfo{Name: fn.Name.Lexeme, Parameters: params, Line: fn.Name.Line, Depth: depth}
}

// walk visits statements only; methods are reported with their class, so
// the walk does not descend into class bodies.
func walk(node ast.Node, visitor func(node ast.Node, entering bool)) {
	if node == nil {
		return
	}

	visitor(node, true)

	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Statements {
			walk(stmt, visitor)
		}
	case *ast.BlockStatement:
		for _, stmt := range n.Statements {
			walk(stmt, visitor)
		}
	case *ast.FunctionStatement:
		for _, stmt := range n.Body {
			walk(stmt, visitor)
		}
	case *ast.IfStatement:
		walk(n.Consequence, visitor)
		if n.Alternative != nil {
			walk(n.Alternative, visitor)
		}
	case *ast.WhileStatement:
		walk(n.Body, visitor)
	}

	visitor(node, false)
}

func printClassInsights(out io.Writer, classes []ClassInfo) {
	fmt.Fprintf(out, "Classes (%d)\n", len(classes))
	if len(classes) == 0 {
		fmt.Fprintln(out, "  · No class declarations found.")
		return
	}

	for _, class := range classes {
		header := class.Name
		if class.Superclass != "" {
			header += " < " + class.Superclass
		}
		fmt.Fprintf(out, "  · class %s (line %d)\n", header, class.Line)
		for _, m := range class.Methods {
			marker := "method"
			if m.Name == "init" {
				marker = "init"
			}
			fmt.Fprintf(out, "      %s %s(%s)\n", marker, m.Name, strings.Join(m.Parameters, ", "))
		}
	}
}

func printFunctionInsights(out io.Writer, functions []FunctionInfo) {
	fmt.Fprintf(out, "Functions (%d)\n", len(functions))
	if len(functions) == 0 {
		fmt.Fprintln(out, "  · No function declarations found.")
		return
	}

	for _, fn := range functions {
		indent := strings.Repeat("  ", fn.Depth)
		marker := "fun"
		if fn.Depth > 0 {
			marker = "closure"
		}
		fmt.Fprintf(out, "  · %s%s %s(%s) (line %d)\n", indent, marker, fn.Name, strings.Join(fn.Parameters, ", "), fn.Line)
	}
}
