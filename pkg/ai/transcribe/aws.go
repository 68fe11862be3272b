package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	ttypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

const NAME = "aws-transcribe"

var DefaultLanguageOptions = []string{"en-IN", "hi-IN"}

type AWS struct {
	cli             *transcribe.Client
	http            *http.Client
	languageOptions []ttypes.LanguageCode
}

func NewAWS(ctx context.Context, region, ak, sk string, languageOptions []string) (*AWS, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if ak != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: ak, SecretAccessKey: sk,
			},
		}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if len(languageOptions) == 0 {
		languageOptions = DefaultLanguageOptions
	}
	langs := make([]ttypes.LanguageCode, 0, len(languageOptions))
	for _, v := range languageOptions {
		langs = append(langs, ttypes.LanguageCode(v))
	}

	return &AWS{
		cli:             transcribe.NewFromConfig(cfg),
		http:            &http.Client{Timeout: 30 * time.Second},
		languageOptions: langs,
	}, nil
}

func (a *AWS) Submit(ctx context.Context, jobName, sourceURL, formatHint string) (JobHandle, error) {
	_, err := a.cli.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		Media: &ttypes.Media{
			MediaFileUri: aws.String(sourceURL),
		},
		MediaFormat:      ttypes.MediaFormat(formatHint),
		IdentifyLanguage: aws.Bool(true),
		LanguageOptions:  a.languageOptions,
	})
	if err != nil {
		return JobHandle{}, err
	}
	slog.Debug("transcription job submitted", slog.String("driver", NAME), slog.String("job", jobName))
	return JobHandle{Name: jobName}, nil
}

func (a *AWS) Poll(ctx context.Context, handle JobHandle) (Status, error) {
	out, err := a.cli.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(handle.Name),
	})
	if err != nil {
		return Status{}, err
	}

	job := out.TranscriptionJob
	if job == nil {
		return Status{State: JobRunning}, nil
	}

	switch job.TranscriptionJobStatus {
	case ttypes.TranscriptionJobStatusCompleted:
		st := Status{State: JobCompleted}
		if job.Transcript != nil {
			st.TranscriptURI = aws.ToString(job.Transcript.TranscriptFileUri)
		}
		return st, nil
	case ttypes.TranscriptionJobStatusFailed:
		return Status{State: JobFailed, Reason: aws.ToString(job.FailureReason)}, nil
	default:
		return Status{State: JobRunning}, nil
	}
}

func (a *AWS) Delete(ctx context.Context, jobName string) error {
	_, err := a.cli.DeleteTranscriptionJob(ctx, &transcribe.DeleteTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
	})
	if err == nil || isNotFound(err) {
		return nil
	}
	return err
}

func (a *AWS) Fetch(ctx context.Context, transcriptURI string) (Transcript, error) {
	return FetchTranscript(ctx, a.http, transcriptURI)
}

// isNotFound reports errors AWS returns for a job name that does not exist.
// Delete answers a missing job with a BadRequestException; other bad requests
// are real rejections.
func isNotFound(err error) bool {
	var nf *ttypes.NotFoundException
	if errors.As(err, &nf) {
		return true
	}
	var br *ttypes.BadRequestException
	if !errors.As(err, &br) {
		return false
	}
	msg := strings.ToLower(br.ErrorMessage())
	for _, v := range notFoundMessages {
		if strings.Contains(msg, v) {
			return true
		}
	}
	return false
}

var notFoundMessages = []string{"couldn't be found", "could not be found", "not found", "does not exist"}
