package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"

	"secretpeek/internal/secret"
)

// AWS serves secrets from AWS Secrets Manager. Secret payloads must be flat
// JSON objects; anything else is reported as malformed.
type AWS struct {
	mu      sync.Mutex
	clients map[string]secretsmanageriface.SecretsManagerAPI

	// newClient builds a client for a region. Swapped out in tests.
	newClient func(region string) (secretsmanageriface.SecretsManagerAPI, error)
}

// NewAWS returns the AWS Secrets Manager provider. Clients are created
// lazily per region and reused.
func NewAWS() *AWS {
	return &AWS{
		clients: make(map[string]secretsmanageriface.SecretsManagerAPI),
		newClient: func(region string) (secretsmanageriface.SecretsManagerAPI, error) {
			sess, err := session.NewSessionWithOptions(session.Options{
				Config:            aws.Config{Region: aws.String(region)},
				SharedConfigState: session.SharedConfigEnable,
			})
			if err != nil {
				return nil, err
			}
			return secretsmanager.New(sess), nil
		},
	}
}

func (p *AWS) Kind() Kind            { return KindAWS }
func (p *AWS) Writable() bool        { return false }
func (p *AWS) Syntax() secret.Syntax { return secret.SyntaxJSON }

func (p *AWS) client(opts Options) (secretsmanageriface.SecretsManagerAPI, error) {
	if opts.Region == "" {
		return nil, &Error{Kind: ErrConfig, Err: fmt.Errorf("no AWS region configured (set region in config.yaml or pass --region)")}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[opts.Region]; ok {
		return c, nil
	}
	c, err := p.newClient(opts.Region)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Err: fmt.Errorf("failed to create AWS client: %w", err)}
	}
	p.clients[opts.Region] = c
	return c, nil
}

func (p *AWS) List(ctx context.Context, opts Options) ([]Item, error) {
	svc, err := p.client(opts)
	if err != nil {
		return nil, err
	}

	var items []Item
	input := &secretsmanager.ListSecretsInput{}
	err = svc.ListSecretsPagesWithContext(ctx, input, func(page *secretsmanager.ListSecretsOutput, lastPage bool) bool {
		for _, s := range page.SecretList {
			item := Item{Name: aws.StringValue(s.Name)}
			if s.LastChangedDate != nil {
				item.ModifiedAt = *s.LastChangedDate
			}
			items = append(items, item)
		}
		return true
	})
	if err != nil {
		return nil, mapAWSError("", err)
	}
	return items, nil
}

func (p *AWS) Fetch(ctx context.Context, name string, opts Options) (*secret.Record, error) {
	svc, err := p.client(opts)
	if err != nil {
		return nil, err
	}

	out, err := svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return nil, mapAWSError(name, err)
	}

	if out.SecretString == nil {
		return nil, &Error{Kind: ErrMalformed, Name: name, Err: fmt.Errorf("secret holds binary data, not a JSON object")}
	}

	rec, err := secret.ParseJSON([]byte(aws.StringValue(out.SecretString)))
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Name: name, Err: err}
	}
	return rec, nil
}

func (p *AWS) Store(ctx context.Context, name string, rec *secret.Record, opts Options) (string, error) {
	svc, err := p.client(opts)
	if err != nil {
		return "", err
	}

	payload := aws.String(string(secret.RenderJSON(rec)))

	_, err = svc.PutSecretValueWithContext(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: payload,
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			_, cerr := svc.CreateSecretWithContext(ctx, &secretsmanager.CreateSecretInput{
				Name:         aws.String(name),
				SecretString: payload,
			})
			if cerr != nil {
				return "", mapAWSError(name, cerr)
			}
			return fmt.Sprintf("created secret %s with %d keys", name, rec.Len()), nil
		}
		return "", mapAWSError(name, err)
	}
	return fmt.Sprintf("stored new version of %s with %d keys", name, rec.Len()), nil
}

// mapAWSError classifies SDK errors into the provider taxonomy.
func mapAWSError(name string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case secretsmanager.ErrCodeResourceNotFoundException:
			return &Error{Kind: ErrNotFound, Name: name, Err: err}
		case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException":
			return &Error{Kind: ErrAccessDenied, Name: name, Err: err}
		case secretsmanager.ErrCodeInvalidRequestException, secretsmanager.ErrCodeInvalidParameterException:
			return &Error{Kind: ErrValidation, Name: name, Err: err}
		}
	}
	return &Error{Kind: ErrTransport, Name: name, Err: err}
}
