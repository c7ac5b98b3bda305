package parser

import (
	"context"
	"testing"

	"codestats/internal/language"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, lang language.Language, src string) (int, int) {
	t.Helper()
	c := NewCounter()
	defer c.Close()

	counts, err := c.Count(context.Background(), lang, []byte(src))
	require.NoError(t, err)
	return counts.Functions, counts.Classes
}

func TestCountRust(t *testing.T) {
	src := `
fn main() {
    println!("Hello, world!");
}

fn helper() {
    // Helper function
}

struct Person {
    name: String,
}

enum Status {
    Active,
    Inactive,
}
`
	funcs, classes := count(t, language.Rust, src)
	assert.Equal(t, 2, funcs)
	assert.Equal(t, 2, classes)
}

func TestCountPython(t *testing.T) {
	src := `
def main():
    print("Hello, world!")

def helper():
    pass

class Person:
    def __init__(self, name):
        self.name = name

    def greet(self):
        print(f"Hello, {self.name}")

class Animal:
    pass
`
	funcs, classes := count(t, language.Python, src)
	assert.Equal(t, 4, funcs, "main, helper, __init__, greet")
	assert.Equal(t, 2, classes, "Person, Animal")
}

func TestCountJavaScript(t *testing.T) {
	src := `
function main() {
    console.log("Hello, world!");
}

const helper = function() {
    // Helper function
};

const arrow = () => {
    return 42;
};

class Person {
    constructor(name) {
        this.name = name;
    }

    greet() {
        console.log("Hello, " + this.name);
    }
}
`
	funcs, classes := count(t, language.JavaScript, src)
	assert.Equal(t, 5, funcs, "main, helper, arrow, constructor, greet")
	assert.Equal(t, 1, classes)
}

func TestCountGo(t *testing.T) {
	src := `
package main

func main() {
    fmt.Println("Hello, world!")
}

func helper() {
    // Helper function
}

type Person struct {
    Name string
}

func (p Person) Greet() {
    fmt.Printf("Hello, %s\n", p.Name)
}
`
	funcs, classes := count(t, language.Go, src)
	assert.Equal(t, 3, funcs, "main, helper, Greet")
	assert.Equal(t, 1, classes)
}

func TestCountGoStructsOnly(t *testing.T) {
	src := `
package main

type Writer interface {
    Write([]byte) (int, error)
}

type StringAlias = string

type Counter int

func (c Counter) Increment() Counter {
    return c + 1
}

type Person struct {
    Name string
    Age  int
}
`
	funcs, classes := count(t, language.Go, src)
	assert.Equal(t, 1, funcs, "only the Increment method")
	assert.Equal(t, 1, classes, "only the Person struct")
}

func TestCountJava(t *testing.T) {
	src := `
public class Main {
    public static void main(String[] args) {
        System.out.println("Hello, world!");
    }

    private void helper() {
        // Helper method
    }

    public Main() {
        // Constructor
    }
}

interface Runnable {
    void run();
}
`
	funcs, classes := count(t, language.Java, src)
	assert.Equal(t, 4, funcs, "main, helper, constructor, run")
	assert.Equal(t, 2, classes, "Main, Runnable")
}

func TestCountNestedFunctions(t *testing.T) {
	src := `
function outer() {
    function inner() {
        const innerArrow = () => {
            return 42;
        };
        return innerArrow;
    }
    return inner;
}
`
	funcs, _ := count(t, language.JavaScript, src)
	assert.Equal(t, 3, funcs, "outer, inner, innerArrow")
}

func TestCountCommentsIgnored(t *testing.T) {
	src := `
// fn commented_function() {}
/* fn another_commented() {} */

fn actual_function() {
    // This is a real function
}

// struct CommentedStruct {}
`
	funcs, classes := count(t, language.Rust, src)
	assert.Equal(t, 1, funcs)
	assert.Equal(t, 0, classes)
}

func TestCountEmptyInput(t *testing.T) {
	for _, lang := range language.All() {
		funcs, classes := count(t, lang, "")
		assert.Equal(t, 0, funcs, "functions for %s", lang)
		assert.Equal(t, 0, classes, "classes for %s", lang)
	}
}

func TestCounterReusesParsers(t *testing.T) {
	c := NewCounter()
	defer c.Close()

	_, err := c.Count(context.Background(), language.Rust, []byte("fn main() {}"))
	require.NoError(t, err)
	assert.Len(t, c.parsers, 1)

	_, err = c.Count(context.Background(), language.Rust, []byte("fn other() {}"))
	require.NoError(t, err)
	assert.Len(t, c.parsers, 1)

	_, err = c.Count(context.Background(), language.Python, []byte("def f(): pass"))
	require.NoError(t, err)
	assert.Len(t, c.parsers, 2)
}
