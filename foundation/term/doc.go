// File: doc.go
// Title: Embedded Command Interpreter
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

/*
Package term wires the tokenizer, the per-mode registry cache and the
dispatcher into one embeddable interpreter.

	engine, err := term.New(commands.NewCatalog(), term.Options{
		Logger:  logger,
		Auditor: emitter,
	})
	if err != nil {
		return err
	}

	res := engine.Execute(ctx, `scan 192.168.1.1 --type=comprehensive`, "security-assessment")
	fmt.Println(res.Status, res.Output)

Execute is safe for concurrent use. Subpackages:

	command   parsed lines, results, descriptors
	parser    the flat command line grammar
	registry  per-mode registries and their cache
	executor  dispatch, built-in commands, audit hand-off
*/
package term
