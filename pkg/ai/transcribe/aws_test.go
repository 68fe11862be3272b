package transcribe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ttypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found exception", &ttypes.NotFoundException{Message: aws.String("no such job")}, true},
		{"missing job bad request", &ttypes.BadRequestException{
			Message: aws.String("The requested job couldn't be found. Check the job name and try your request again."),
		}, true},
		{"wrapped missing job", fmt.Errorf("operation error Transcribe: DeleteTranscriptionJob, %w",
			&ttypes.BadRequestException{Message: aws.String("The requested job couldn't be found.")}), true},
		{"other bad request", &ttypes.BadRequestException{
			Message: aws.String("1 validation error detected: Value at 'transcriptionJobName' failed to satisfy constraint"),
		}, false},
		{"bad request without message", &ttypes.BadRequestException{}, false},
		{"limit exceeded", &ttypes.LimitExceededException{Message: aws.String("slow down")}, false},
		{"plain error", errors.New("network down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}
