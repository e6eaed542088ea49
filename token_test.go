package dynpath

import "testing"

// TestTokenizeProperties tests dotted property paths
func TestTokenizeProperties(t *testing.T) {
	tokens, err := Tokenize("a.b.c")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %d", len(tokens))
	}
	for i, name := range []string{"a", "b", "c"} {
		if tokens[i].Kind != KindProperty {
			t.Errorf("Token %d: expected property kind, got %d", i, tokens[i].Kind)
		}
		if tokens[i].Name != name {
			t.Errorf("Token %d: expected name %q, got %q", i, name, tokens[i].Name)
		}
	}
}

// TestTokenizeIndexTyping tests that index key types are decided at tokenize time
func TestTokenizeIndexTyping(t *testing.T) {
	tokens, _ := Tokenize("x[3]")
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	if !tokens[1].Numeric || tokens[1].Num != 3 {
		t.Errorf("Expected numeric key 3, got numeric=%v num=%d", tokens[1].Numeric, tokens[1].Num)
	}

	tokens, _ = Tokenize("x[ab]")
	if tokens[1].Numeric {
		t.Error("Expected string key for x[ab]")
	}
	if tokens[1].Key != "ab" {
		t.Errorf("Expected key %q, got %q", "ab", tokens[1].Key)
	}

	// Leading zeros still coerce to a number, matching the decide-once
	// numeric-parse rule.
	tokens, _ = Tokenize("x[007]")
	if !tokens[1].Numeric || tokens[1].Num != 7 {
		t.Errorf("Expected numeric key 7 for x[007], got numeric=%v num=%d", tokens[1].Numeric, tokens[1].Num)
	}

	tokens, _ = Tokenize("x[-1]")
	if !tokens[1].Numeric || tokens[1].Num != -1 {
		t.Errorf("Expected numeric key -1, got numeric=%v num=%d", tokens[1].Numeric, tokens[1].Num)
	}

	// Non-integral content stays a string key.
	tokens, _ = Tokenize("x[3.5]")
	if tokens[1].Numeric {
		t.Error("Expected string key for x[3.5]")
	}
}

// TestTokenizeMixed tests a path combining properties, indexes, and calls
func TestTokenizeMixed(t *testing.T) {
	tokens, err := Tokenize(`a.b[0].c(x,"y")`)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("Expected 4 tokens, got %d", len(tokens))
	}
	if tokens[0].Kind != KindProperty || tokens[0].Name != "a" {
		t.Errorf("Token 0: expected property a, got %+v", tokens[0])
	}
	if tokens[2].Kind != KindIndex || !tokens[2].Numeric || tokens[2].Num != 0 {
		t.Errorf("Token 2: expected index 0, got %+v", tokens[2])
	}
	if tokens[3].Kind != KindCall || tokens[3].Name != "c" {
		t.Errorf("Token 3: expected call c, got %+v", tokens[3])
	}
	if len(tokens[3].Args) != 2 || tokens[3].Args[0] != "x" || tokens[3].Args[1] != "y" {
		t.Errorf("Token 3: expected args [x y], got %v", tokens[3].Args)
	}
}

// TestTokenizeNestedDelimiters tests bracket depth counting
func TestTokenizeNestedDelimiters(t *testing.T) {
	tokens, _ := Tokenize("m[keys[0]]")
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	if tokens[1].Numeric || tokens[1].Key != "keys[0]" {
		t.Errorf("Expected string key %q, got %+v", "keys[0]", tokens[1])
	}

	tokens, _ = Tokenize("f(g(1),2)")
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Kind != KindCall || len(tokens[0].Args) != 2 {
		t.Fatalf("Expected call with 2 args, got %+v", tokens[0])
	}
	if tokens[0].Args[0] != "g(1)" {
		t.Errorf("Expected nested call kept literal, got %v", tokens[0].Args[0])
	}
}

// TestTokenizeUnbalanced tests the permissive handling of unterminated delimiters
func TestTokenizeUnbalanced(t *testing.T) {
	tokens, err := Tokenize("a[12")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	if !tokens[1].Numeric || tokens[1].Num != 12 {
		t.Errorf("Expected the rest of the string as index content, got %+v", tokens[1])
	}

	tokens, _ = Tokenize("f(1,2")
	if len(tokens) != 1 || tokens[0].Kind != KindCall {
		t.Fatalf("Expected 1 call token, got %+v", tokens)
	}
	if len(tokens[0].Args) != 2 {
		t.Errorf("Expected 2 args from unterminated call, got %v", tokens[0].Args)
	}
}

// TestTokenizeEscapes tests backslash escaping of metacharacters
func TestTokenizeEscapes(t *testing.T) {
	tokens, _ := Tokenize(`a\.b.c`)
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Name != "a.b" {
		t.Errorf("Expected property %q, got %q", "a.b", tokens[0].Name)
	}

	tokens, _ = Tokenize(`x\[0\]`)
	if len(tokens) != 1 || tokens[0].Name != "x[0]" {
		t.Errorf("Expected literal property x[0], got %+v", tokens)
	}
}

// TestTokenizeDeterministic tests that tokenizing is pure and stable
func TestTokenizeDeterministic(t *testing.T) {
	path := `users[0].roles[admin].check("a,b", [1,2])`
	first, _ := Tokenize(path)
	second, _ := Tokenize(path)
	if len(first) != len(second) {
		t.Fatalf("Token counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Name != second[i].Name ||
			first[i].Key != second[i].Key || first[i].Num != second[i].Num {
			t.Errorf("Token %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestCompile tests compiled path reuse
func TestCompile(t *testing.T) {
	p, err := Compile("a.b[1]")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if p.String() != "a.b[1]" {
		t.Errorf("Expected original path preserved, got %q", p.String())
	}

	root := map[string]any{"a": map[string]any{"b": []any{"x", "y"}}}
	if got := p.GetWithDefault(root, nil); got != "y" {
		t.Errorf("Expected y, got %v", got)
	}
	if res := p.Get(root); !res.Exists() || res.String() != "y" {
		t.Errorf("Expected y, got %v", res.Value())
	}

	// Mutating a copy of the token slice must not affect the compiled path.
	tokens := p.Tokens()
	tokens[0].Name = "z"
	if got := p.GetWithDefault(root, nil); got != "y" {
		t.Errorf("Compiled path changed after Tokens() mutation: %v", got)
	}

	p.Set(root, "q")
	if got := p.GetWithDefault(root, nil); got != "q" {
		t.Errorf("Expected q after compiled set, got %v", got)
	}
}

// TestEscapePathSegment tests metacharacter escaping helpers
func TestEscapePathSegment(t *testing.T) {
	if got := EscapePathSegment("plain"); got != "plain" {
		t.Errorf("Expected plain unchanged, got %q", got)
	}
	if got := EscapePathSegment("foo.bar"); got != `foo\.bar` {
		t.Errorf("Expected escaped dot, got %q", got)
	}
	if got := BuildEscapedPath("config", "foo.bar"); got != `config.foo\.bar` {
		t.Errorf("Expected joined escaped path, got %q", got)
	}

	root := map[string]any{"foo.bar": map[string]any{"baz": 1}}
	path := BuildEscapedPath("foo.bar", "baz")
	if got := GetWithDefault(root, path, nil); got != 1 {
		t.Errorf("Expected 1 via escaped path, got %v", got)
	}
}
