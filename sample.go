package mailrag

import (
	"context"

	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
)

// SampleEmails returns three demo emails, two for Yaalini and one for Rajesh.
func SampleEmails() []*model.Email {
	return []*model.Email{
		{
			Receiver: "Yaalini",
			Content: `Hi Yaalini,

I hope this email finds you well. I wanted to follow up on our conversation about the upcoming project deadline.

We need to finalize the design specifications by next Friday. Please let me know if you need any additional resources.

Best regards,
John`,
			Metadata: model.Metadata{model.MetadataSource: "sample"},
		},
		{
			Receiver: "Yaalini",
			Content: `Hello Yaalini,

Quick reminder about the team meeting tomorrow at 10 AM in Conference Room B.

Please bring your project updates and any blockers you're facing.

Thanks,
Sarah`,
			Metadata: model.Metadata{model.MetadataSource: "sample"},
		},
		{
			Receiver: "Rajesh",
			Content: `Dear Rajesh,

Thank you for submitting your report. I've reviewed it and have some feedback.

Could we schedule a quick call to discuss the changes?

Regards,
Manager`,
			Metadata: model.Metadata{model.MetadataSource: "sample"},
		},
	}
}

// SeedSampleEmails ingests SampleEmails and returns the ingest results.
func (m *MailRAG) SeedSampleEmails(ctx context.Context) ([]*model.IngestResult, error) {
	var results []*model.IngestResult
	for _, email := range SampleEmails() {
		result, err := m.IngestEmail(ctx, email)
		if err != nil {
			return results, helper.NewError("seed sample emails", err)
		}
		results = append(results, result)
	}
	return results, nil
}
