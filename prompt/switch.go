package prompt

import "fmt"

// Visitor handles every Prompt variant. Adding a variant adds a method
// here, so every consumer that implements Visitor stops compiling until it
// handles the new case.
type Visitor[R any] interface {
	VisitField(*Field) R
	VisitForm(*Form) R
	VisitStack(*Stack) R
	VisitMessage(*Message) R
	VisitTerminal(*Terminal) R
}

// Switch dispatches p to the matching Visitor method.
func Switch[R any](p Prompt, v Visitor[R]) R {
	switch p := p.(type) {
	case *Field:
		return v.VisitField(p)
	case *Form:
		return v.VisitForm(p)
	case *Stack:
		return v.VisitStack(p)
	case *Message:
		return v.VisitMessage(p)
	case *Terminal:
		return v.VisitTerminal(p)
	default:
		panic(fmt.Sprintf("prompt: unhandled variant %T", p))
	}
}
