package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/imroc/req/v3"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/database"
)

// statusClientClosedRequest is what the upstream returns when it notices the
// client abandoned the request.
const statusClientClosedRequest = 499

// Dispatcher forwards statements and chat turns to the upstream AI endpoint.
// No retries anywhere: a failed attempt is terminal and the user re-submits.
type Dispatcher struct {
	cl      *req.Client
	baseURL string
}

func NewDispatcher(
	baseURL string,
	cl *req.Client,
) *Dispatcher {
	return &Dispatcher{
		cl:      cl,
		baseURL: baseURL,
	}
}

// Analyze posts the statement as a multipart request and returns the raw
// response body for normalization. Cancelling ctx aborts the in-flight
// request and resolves to common.ErrCancelled, distinguishable from failure.
func (d *Dispatcher) Analyze(
	ctx context.Context,
	fileName string,
	payload []byte,
) ([]byte, error) {
	resp, err := d.cl.R().
		SetContext(ctx).
		SetFileBytes("file", fileName, payload).
		Post(d.baseURL + "/api")
	if err != nil {
		return nil, d.wrapTransportError(err)
	}

	if resp.IsErrorState() {
		return nil, d.errorFromResponse(resp)
	}

	return resp.Bytes(), nil
}

// Chat asks a follow-up question about a stored analysis. Prior turns and
// the analysis ride along as context; the upstream builds the prompt.
func (d *Dispatcher) Chat(
	ctx context.Context,
	messages []database.Message,
	analysis database.Analysis,
) (string, error) {
	var chatResp chatResponse

	resp, err := d.cl.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Messages:     messages,
			AnalysisData: analysis,
		}).
		SetSuccessResult(&chatResp).
		Post(d.baseURL + "/api/chat")
	if err != nil {
		return "", d.wrapTransportError(err)
	}

	if resp.IsErrorState() {
		return "", d.errorFromResponse(resp)
	}

	return chatResp.Text, nil
}

func (d *Dispatcher) wrapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return errors.Wrapf(common.ErrCancelled, "%v", err)
	}

	return err
}

func (d *Dispatcher) errorFromResponse(resp *req.Response) error {
	if resp.StatusCode == statusClientClosedRequest {
		return common.ErrCancelled
	}

	body := resp.Bytes()

	var upstream apiError
	if jsonErr := json.Unmarshal(body, &upstream); jsonErr == nil && upstream.Error != "" {
		return &common.RequestError{
			StatusCode: resp.StatusCode,
			Message:    upstream.Error,
		}
	}

	return &common.RequestError{
		StatusCode: resp.StatusCode,
	}
}
