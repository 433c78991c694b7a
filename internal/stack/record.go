// Package stack renders caller records for error annotations and trace
// events.
package stack

import (
	"runtime"
	"strconv"
	"strings"
)

// part selects a piece of a rendered record.
type part uint8

const (
	partPackage part = 1 << iota
	partFunction
	partFile
	partLine

	allParts = partPackage | partFunction | partFile | partLine
)

type RecordOption func(parts *part)

func toggle(p part, on bool) RecordOption {
	return func(parts *part) {
		if on {
			*parts |= p
		} else {
			*parts &^= p
		}
	}
}

// PackagePath keeps or strips the import path before the package name.
func PackagePath(on bool) RecordOption {
	return toggle(partPackage, on)
}

func FunctionName(on bool) RecordOption {
	return toggle(partFunction, on)
}

func FileName(on bool) RecordOption {
	return toggle(partFile, on)
}

func Line(on bool) RecordOption {
	return toggle(partLine, on)
}

type call struct {
	pc   uintptr
	file string
	line int
}

// Call captures the caller depth frames above the function calling Call.
func Call(depth int) call {
	pc, file, line, _ := runtime.Caller(depth + 1)

	return call{pc: pc, file: file, line: line}
}

// Record renders the call as `import/path/pkg.Type.Func(file.go:42)`.
func (c call) Record(opts ...RecordOption) string {
	parts := allParts
	for _, opt := range opts {
		if opt != nil {
			opt(&parts)
		}
	}

	var b strings.Builder
	if parts&partFunction != 0 {
		name := strings.ReplaceAll(runtime.FuncForPC(c.pc).Name(), "[...]", "")
		if parts&partPackage == 0 {
			name = name[strings.LastIndexByte(name, '/')+1:]
		}
		b.WriteString(name)
	}
	if parts&partFile == 0 {
		return b.String()
	}
	withFunction := b.Len() > 0
	if withFunction {
		b.WriteByte('(')
	}
	b.WriteString(c.file[strings.LastIndexByte(c.file, '/')+1:])
	if parts&partLine != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.line))
	}
	if withFunction {
		b.WriteByte(')')
	}

	return b.String()
}

func (c call) String() string {
	return c.Record(FileName(false))
}

// Record renders the caller depth frames above the function calling Record.
func Record(depth int, opts ...RecordOption) string {
	return Call(depth + 1).Record(opts...)
}
