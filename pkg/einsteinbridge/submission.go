package einsteinbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (b *EinsteinBridge) Upload(ctx context.Context, module bridge.ModuleCode, taskName string, content []byte, creds bridge.Credentials) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(taskName)))
	header.Set("Content-Type", "text/plain")
	part, err := form.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err = part.Write(content); err != nil {
		return "", err
	}
	if err = form.Close(); err != nil {
		return "", err
	}

	req, err := b.newRequest(ctx, http.MethodPost, b.moduleURL(module, "upload"), &body, &creds)
	if err != nil {
		return "", bridge.NewError(bridge.Upload, "Failed to upload file, Einstein may be down.", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	res, err := b.do(req, bridge.Upload, "Failed to upload file, Einstein may be down.")
	if err != nil {
		return "", err
	}
	return string(res), nil
}

func (b *EinsteinBridge) FetchFailureDetail(ctx context.Context, module bridge.ModuleCode, creds bridge.Credentials) ([]bridge.TestResult, error) {
	req, err := b.newRequest(ctx, http.MethodGet, b.moduleURL(module, "get-report?select-first-failed-test="), nil, &creds)
	if err != nil {
		return nil, bridge.NewError(bridge.DetailFetch, "Could not fetch results", err)
	}
	body, err := b.do(req, bridge.DetailFetch, "Could not fetch results")
	if err != nil {
		return nil, err
	}
	var detail bridge.FailureDetail
	if err = json.Unmarshal(body, &detail); err != nil {
		return nil, bridge.NewError(bridge.DetailFetch, "Could not parse results", err)
	}
	return detail.Results, nil
}
