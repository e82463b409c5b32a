package main

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func TestAppConfigValidate(t *testing.T) {
	t.Parallel()

	valid := AppConfig{
		DataPath:        "data/rules_sample.json",
		DefaultMaxSteps: 3,
		MaxStepsLimit:   10,
		MemoryBackend:   "inmemory",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cases := map[string]func(c *AppConfig){
		"empty data path":    func(c *AppConfig) { c.DataPath = " " },
		"zero default steps": func(c *AppConfig) { c.DefaultMaxSteps = 0 },
		"limit below default": func(c *AppConfig) {
			c.MaxStepsLimit = 2
		},
		"unknown backend": func(c *AppConfig) { c.MemoryBackend = "sqlite" },
	}
	for name, mutate := range cases {
		c := valid
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("%s: Validate() error = %v, want ErrValidation", name, err)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := rootCMD()
	for _, name := range []string{"serve", "ask", "tools"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("env") == nil {
		t.Fatalf("--env flag missing")
	}
}
