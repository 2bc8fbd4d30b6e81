package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const (
	exitOK           = 0
	exitInvalidInput = 10
	exitCryptoFailed = 20
	exitVerifyFailed = 30
	exitStoreFailed  = 40

	envSeed               = "XRPL_SEED"
	envKeystorePassphrase = "XRPL_KEYSTORE_PASSPHRASE"
)

type command struct {
	name  string
	usage string
	run   func(env *cliEnv, args []string) error
}

var commands = []command{
	{"generate", "generate a random seed and its account", runGenerate},
	{"derive", "derive keys and address from a seed", runDerive},
	{"passphrase", "derive a seed from a passphrase (legacy, weak)", runPassphrase},
	{"mnemonic", "convert between a seed and its 12-word mnemonic", runMnemonic},
	{"sign", "sign hex transaction bytes with a seed or a service key id", runSign},
	{"verify", "verify a signature over hex transaction bytes", runVerify},
	{"address", "print the account of a service key id", runAddress},
	{"xaddress", "convert between classic addresses and X-addresses", runXAddress},
	{"pok", "generate or verify a secret-key proof of knowledge", runProof},
	{"context-hash", "compute a confidential transaction context hash", runContextHash},
	{"keystore-save", "encrypt a seed into a keystore file", runKeystoreSave},
	{"keystore-load", "decrypt a keystore file", runKeystoreLoad},
}

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func main() {
	env := &cliEnv{stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}
	os.Exit(run(env, os.Args[1:]))
}

func run(env *cliEnv, args []string) int {
	if len(args) < 1 {
		printUsage(env.stderr)
		return exitInvalidInput
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(env, args[1:])
		if err == nil {
			return exitOK
		}
		writeStderrln(env, err.Error())
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitInvalidInput
	}
	printUsage(env.stderr)
	return exitInvalidInput
}

func newFlagSet(env *cliEnv, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: xrpl-keytool <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.usage)
	}
}

func printJSON(env *cliEnv, v any) error {
	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStderrln(env *cliEnv, line string) {
	fmt.Fprintln(env.stderr, line)
}
