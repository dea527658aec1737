package admission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Interface for a type that can surface validator faults to operators.
type Notifier interface {
	NotifyFault(ctx context.Context, c *Context, validatorName string, faultErr error) error
}

type SlackNotifier struct {
	SlackWebhookURL string
}

var _ Notifier = (*SlackNotifier)(nil)

func (n *SlackNotifier) NotifyFault(ctx context.Context, c *Context, validatorName string, faultErr error) error {
	msg := "⚠️ Admission Validator Fault ⚠️\n"
	msg += fmt.Sprintf("`%s` / user `%s` / community `%s`\n",
		validatorName, c.Member.UserID, c.Member.CommunityID)
	msg += fmt.Sprintf("Error: %s\n", faultErr)
	c.Logger.Debug("sending slack notification")
	return n.sendSlackMsg(ctx, msg)
}

type slackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack
// workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(slackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
