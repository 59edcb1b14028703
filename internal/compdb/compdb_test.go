// SPDX-License-Identifier: MPL-2.0

package compdb

import (
	"reflect"
	"testing"
)

func TestIsSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"app/main.cc", true},
		{"lib/a.c", true},
		{"lib/legacy.C", true},
		{"asm/start.S", true},
		{"cuda/kernel.cu", true},
		{"lib/a.h", false},
		{"lib/a.hpp", false},
		{"lib/a.inc", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := IsSource(tt.path); got != tt.want {
				t.Errorf("IsSource(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPreferred(t *testing.T) {
	t.Parallel()

	short := []string{"cc", "-c"}
	long := []string{"cc", "-DX", "-Iinc", "-c"}

	tests := []struct {
		name  string
		prior entry
		next  entry
		want  bool
	}{
		{"source beats header parse", entry{long, "lib/a.h"}, entry{short, "app/main.cc"}, true},
		{"header parse never replaces source", entry{short, "app/main.cc"}, entry{long, "lib/a.h"}, false},
		{"longer arguments win between sources", entry{short, "a.cc"}, entry{long, "b.cc"}, true},
		{"shorter arguments lose between sources", entry{long, "a.cc"}, entry{short, "b.cc"}, false},
		{"equal length keeps prior", entry{short, "a.cc"}, entry{[]string{"cc", "-O2"}, "b.cc"}, false},
		{"longer arguments win between headers", entry{short, "a.h"}, entry{long, "b.h"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := preferred(tt.prior, tt.next); got != tt.want {
				t.Errorf("preferred() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatabase_Attribute(t *testing.T) {
	t.Parallel()

	db := New("/ws")
	db.Add("app/main.cc", []string{"cc", "-c", "app/main.cc"})
	db.Add("app/util.cc", []string{"cc", "-DUTIL", "-Ilib", "-c", "app/util.cc"})
	db.Add("lib/a.h", []string{"cc", "-x", "c++-header", "-fsyntax-only", "-Ilib", "-DPARSE", "lib/a.h"})

	if !db.Attribute(SourceImports{SourceFile: "app/main.cc", Imports: []string{"lib/a.h", "lib/b.h"}}) {
		t.Fatal("Attribute() = false for a compiled source")
	}
	if !db.Attribute(SourceImports{SourceFile: "app/util.cc", Imports: []string{"lib/b.h"}}) {
		t.Fatal("Attribute() = false for a compiled source")
	}
	if db.Attribute(SourceImports{SourceFile: "gen/missing.cc", Imports: []string{"lib/c.h"}}) {
		t.Error("Attribute() = true for a source without a command")
	}

	want := []Command{
		{Arguments: []string{"cc", "-c", "app/main.cc"}, Directory: "/ws", File: "app/main.cc"},
		{Arguments: []string{"cc", "-DUTIL", "-Ilib", "-c", "app/util.cc"}, Directory: "/ws", File: "app/util.cc"},
		// The shorter source command replaces the longer header parse.
		{Arguments: []string{"cc", "-c", "app/main.cc"}, Directory: "/ws", File: "lib/a.h"},
		// Between two sources the longer argument list wins.
		{Arguments: []string{"cc", "-DUTIL", "-Ilib", "-c", "app/util.cc"}, Directory: "/ws", File: "lib/b.h"},
	}
	if got := db.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() =\n%v\nwant\n%v", got, want)
	}
	if db.Len() != 4 {
		t.Errorf("Len() = %d, want 4", db.Len())
	}
}

func TestDatabase_AddReplaces(t *testing.T) {
	t.Parallel()

	db := New("/ws")
	db.Add("a.cc", []string{"cc", "-c", "a.cc", "-O0"})
	db.Add("a.cc", []string{"cc", "-c", "a.cc"})

	got := db.Commands()
	if len(got) != 1 || len(got[0].Arguments) != 3 {
		t.Errorf("Commands() = %v, want the later command", got)
	}
}
