package report

import (
	"fmt"
	"strings"

	"github.com/siherrmann/mailrag/model"
)

// DateLayout is the timestamp format of exact match reports, always in UTC.
const DateLayout = "2006-01-02 15:04:05"

var (
	headerRule  = strings.Repeat("=", 50)
	groupRule   = strings.Repeat("-", 30)
	emailRule   = strings.Repeat("-", 40)
	sectionRule = headerRule + "\n\n"
)

// EmptyReport is returned whenever a query matched nothing.
func EmptyReport(receiver string) string {
	return fmt.Sprintf("No emails found for '%s'", receiver)
}

func writeHeader(b *strings.Builder, receiver string) {
	fmt.Fprintf(b, "EMAILS FOR: %s\n", receiver)
	b.WriteString(sectionRule)
}

// RenderGroups renders reconciled similarity groups in the given order.
// Each section shows the top score of its group and the chunks joined by a space.
func RenderGroups(receiver string, groups []*model.RetrievalGroup) string {
	if len(groups) == 0 {
		return EmptyReport(receiver)
	}

	var b strings.Builder
	writeHeader(&b, receiver)
	for _, group := range groups {
		fmt.Fprintf(&b, "RECEIVER: %s\n", group.Receiver)
		fmt.Fprintf(&b, "CONFIDENCE: %.2f\n", group.TopScore())
		b.WriteString(groupRule + "\n")
		fmt.Fprintf(&b, "CONTENT:\n%s\n\n", group.Text())
		b.WriteString(sectionRule)
	}
	return b.String()
}

// RenderEmails renders exact match records in insertion order.
func RenderEmails(receiver string, emails []*model.Email) string {
	if len(emails) == 0 {
		return EmptyReport(receiver)
	}

	var b strings.Builder
	writeHeader(&b, receiver)
	for i, email := range emails {
		fmt.Fprintf(&b, "EMAIL %d:\n", i+1)
		fmt.Fprintf(&b, "Receiver: %s\n", email.Receiver)
		fmt.Fprintf(&b, "ID: %d\n", email.ID)
		fmt.Fprintf(&b, "Date: %s\n", email.CreatedAt.UTC().Format(DateLayout))
		b.WriteString(emailRule + "\n")
		fmt.Fprintf(&b, "%s\n\n", email.Content)
		b.WriteString(sectionRule)
	}
	return b.String()
}
