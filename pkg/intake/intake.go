package intake

import (
	"github.com/askupi/insights/pkg/common"
)

const DefaultMaxSize = int64(1_000_000)

const pdfMimeType = "application/pdf"

// File is an accepted upload, ready for transmission.
type File struct {
	Name     string
	MimeType string
	Payload  []byte
}

type Intake struct {
	maxSize int64
}

func NewIntake(maxSize int64) *Intake {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Intake{
		maxSize: maxSize,
	}
}

// Accept validates exactly one file. Any violation rejects the whole
// selection; the caller re-selects, there is no retry here.
func (i *Intake) Accept(
	name string,
	mimeType string,
	payload []byte,
) (*File, error) {
	if len(payload) == 0 {
		return nil, common.NewValidationError("file_missing", "no file provided")
	}

	if mimeType != pdfMimeType {
		return nil, common.NewValidationError("file_type",
			"only %s statements are supported, got %q", pdfMimeType, mimeType)
	}

	if int64(len(payload)) > i.maxSize {
		return nil, common.NewValidationError("file_size",
			"file is %d bytes, keep it under %d bytes", len(payload), i.maxSize)
	}

	return &File{
		Name:     name,
		MimeType: mimeType,
		Payload:  payload,
	}, nil
}
