package main

import (
	"testing"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

func testMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/html", html.Minify)
	return m
}

func TestMinifyCSS(t *testing.T) {
	m := testMinifier()
	input := `
.choice {
    color: #ffffff;
    margin: 0px;
}
`
	got, err := m.String("text/css", input)
	if err != nil {
		t.Fatalf("css minify failed: %v", err)
	}
	want := ".choice{color:#fff;margin:0}"
	if got != want {
		t.Errorf("css minify = %q, want %q", got, want)
	}
}

func TestMinifyHTML(t *testing.T) {
	m := testMinifier()
	input := `<!DOCTYPE html>
<html>
<head><title>Kvizo</title></head>
<body>
    <div id="quiz">   <p>Question 1 of 5</p>   </div>
</body>
</html>`
	got, err := m.String("text/html", input)
	if err != nil {
		t.Fatalf("html minify failed: %v", err)
	}
	want := `<!doctype html><title>Kvizo</title><div id="quiz"><p>Question 1 of 5</div>`
	if got != want {
		t.Errorf("html minify = %q, want %q", got, want)
	}
}

func TestMinifyJS(t *testing.T) {
	m := testMinifier()
	input := `function pickChoice(index, buttons) {
    return buttons[index];
}`
	got, err := m.String("application/javascript", input)
	if err != nil {
		t.Fatalf("js minify failed: %v", err)
	}
	want := "function pickChoice(e,t){return t[e]}"
	if got != want {
		t.Errorf("js minify = %q, want %q", got, want)
	}
}
