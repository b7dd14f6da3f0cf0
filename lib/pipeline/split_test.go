// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"echo hello", []string{"echo hello"}},
		{"echo hello | cat", []string{"echo hello", "cat"}},
		{"a|b|c", []string{"a", "b", "c"}},
		{"  a  |  b  ", []string{"a", "b"}},
		{`echo "a|b"`, []string{`echo "a|b"`}},
		{`echo "x | y" | wc`, []string{`echo "x | y"`, "wc"}},
		{"a ||| b", []string{"a", "b"}},
		{"| cat", []string{"cat"}},
	}
	for _, c := range cases {
		got := Split(c.line)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Split(%q) = %#v, want %#v", c.line, got, c.want)
		}
	}
}

func TestHasPipe(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"echo hello", false},
		{"echo hello | cat", true},
		{`echo "a|b"`, false},
		{"| cat", false},
		{"", false},
	}
	for _, c := range cases {
		if got := HasPipe(c.line); got != c.want {
			t.Errorf("HasPipe(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}
