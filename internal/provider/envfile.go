package provider

import (
	"context"
	"fmt"
	"os"

	"secretpeek/internal/secret"
)

// EnvFile serves dotenv secret files from a directory.
type EnvFile struct{}

// NewEnvFile returns the env file provider.
func NewEnvFile() *EnvFile {
	return &EnvFile{}
}

func (p *EnvFile) Kind() Kind            { return KindEnv }
func (p *EnvFile) Writable() bool        { return true }
func (p *EnvFile) Syntax() secret.Syntax { return secret.SyntaxEnv }

func (p *EnvFile) List(ctx context.Context, opts Options) ([]Item, error) {
	return listFiles(opts, ".env")
}

func (p *EnvFile) Fetch(ctx context.Context, name string, opts Options) (*secret.Record, error) {
	data, err := readFile(KindEnv, name, opts)
	if err != nil {
		return nil, err
	}

	rec, err := secret.ParseEnv(data)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Name: name, Err: err}
	}
	return rec, nil
}

func (p *EnvFile) Store(ctx context.Context, name string, rec *secret.Record, opts Options) (string, error) {
	for _, k := range rec.Keys() {
		if err := secret.ValidateEnvKey(k); err != nil {
			return "", &Error{Kind: ErrValidation, Name: name, Err: err}
		}
	}

	path, err := filePath(KindEnv, name, opts)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, secret.RenderEnv(rec), 0600); err != nil {
		return "", &Error{Kind: ErrTransport, Name: name, Err: err}
	}
	return fmt.Sprintf("wrote %d keys to %s", rec.Len(), path), nil
}
