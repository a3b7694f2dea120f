package awsclient

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	clients := New(aws.Config{Region: "us-east-1"})

	assert.NotNil(t, clients.Connect)
	assert.NotNil(t, clients.Lex)
	assert.NotNil(t, clients.SSM)
	assert.NotNil(t, clients.S3)
	assert.NotNil(t, clients.Lambda)
	assert.Equal(t, "us-east-1", clients.SSM.Options().Region)
}
