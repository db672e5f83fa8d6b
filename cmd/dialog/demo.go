package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/dialog/input"
	"github.com/xraph/dialog/workflow"
)

type createUserInput struct {
	Team string `json:"team"`
}

var createUser = workflow.NewDefinition("create-user",
	func(io *workflow.IO, in createUserInput) error {
		profile, err := workflow.Ask(io, input.Form(map[string]input.Descriptor{
			"name": input.Text("Name").Validate(input.MinLength(3)),
			"email": input.Text("Email").Placeholder("ada@example.com").Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return input.Invalid("email must contain @")
				}
				return nil
			}),
		}))
		if err != nil {
			return err
		}
		name := input.Value[string](profile, "name")

		role, err := workflow.Ask(io, input.Select("Role", input.Options("viewer", "editor", "admin")...).
			Default("viewer"))
		if err != nil {
			return err
		}

		if role == "admin" {
			ok, err := workflow.Ask(io, input.Boolean(fmt.Sprintf("Grant admin rights to %s?", name)))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("admin grant declined")
			}
		}

		io.Logger().Info("creating user",
			slog.String("name", name),
			slog.String("role", role),
			slog.String("team", in.Team),
		)
		return io.Message(fmt.Sprintf("User %s created with role %s.", name, role))
	},
	workflow.WithTitle("Create user"),
	workflow.WithDescription("Collects a profile and a role, then provisions the account."),
	workflow.WithIcon("user-plus"),
	workflow.WithCategory("accounts"),
)

var rateService = workflow.NewDefinition("rate-service",
	func(io *workflow.IO, _ struct{}) error {
		score, err := workflow.Ask(io, input.Number("Rating").Describe("From 1 to 5").Validate(func(n float64) error {
			if n < 1 || n > 5 {
				return input.Invalid("rating must be between 1 and 5")
			}
			return nil
		}))
		if err != nil {
			return err
		}
		if _, err := workflow.Ask(io, input.MultiSelect("What went well?",
			input.Options("speed", "quality", "support")...)); err != nil {
			return err
		}
		return io.Message(fmt.Sprintf("Thanks for rating us %.0f/5.", score))
	},
	workflow.WithTitle("Rate the service"),
	workflow.WithCategory("feedback"),
)

func demoCatalog() *workflow.Catalog {
	c := workflow.NewCatalog()
	workflow.Register(c, createUser)
	workflow.Register(c, rateService)
	return c
}
