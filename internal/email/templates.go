package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var tierUpgradeTemplate = template.Must(template.New("tier_upgrade").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Your StudyMate plan is active</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
<table role="presentation" style="width: 100%; border: 0; cellpadding: 0; cellspacing: 0;">
<tr><td style="padding: 40px 0; text-align: center;">
<table role="presentation" style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
<tr><td style="padding: 32px 40px; text-align: center;">
<h1 style="margin: 0 0 16px; font-size: 24px; color: #1a1a1a;">Your {{.PlanName}} plan is active</h1>
<p style="margin: 0 0 24px; color: #666; font-size: 15px; line-height: 1.5;">
Thanks for subscribing to StudyMate. Your account has been upgraded and your new limits are available right away.
</p>
<a href="{{.DashboardURL}}" style="display: inline-block; padding: 12px 32px; background: #2563eb; color: #ffffff; text-decoration: none; border-radius: 6px; font-size: 15px; font-weight: 500;">
Open Dashboard
</a>
<p style="margin: 24px 0 0; color: #999; font-size: 13px; line-height: 1.5;">
You can manage or cancel your subscription from the billing portal at any time.
</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`))

// TierUpgradeData holds template data for the plan confirmation email.
type TierUpgradeData struct {
	PlanName     string
	DashboardURL string
}

// RenderTierUpgradeEmail renders the plan confirmation HTML email.
func RenderTierUpgradeEmail(data TierUpgradeData) (html, text string, err error) {
	var buf bytes.Buffer
	if err := tierUpgradeTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render tier upgrade template: %w", err)
	}

	textBody := fmt.Sprintf("Your %s plan is active\n\nThanks for subscribing to StudyMate. Open your dashboard: %s\n\nYou can manage or cancel your subscription from the billing portal at any time.", data.PlanName, data.DashboardURL)

	return buf.String(), textBody, nil
}
