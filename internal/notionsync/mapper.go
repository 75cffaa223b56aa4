package notionsync

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/dvloznov/finsight/internal/domain"
)

// Property names of the Notion transaction database.
const (
	PropDescription = "Description"
	PropEntryKey    = "Entry Key"
	PropDate        = "Date"
	PropType        = "Type"
	PropAmount      = "Amount"
	PropCategory    = "Category"
	PropSubCategory = "Subcategory"
	PropReference   = "Reference"
	PropBalance     = "Balance After"
	PropNotes       = "Notes"
)

// EntryKey identifies one exported transaction row so that re-exports
// update pages instead of duplicating them.
func EntryKey(exportID string, index int) string {
	return fmt.Sprintf("%s#%d", exportID, index)
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// TransactionToNotionProperties converts a transaction to Notion page properties.
// Optional fields are only set when present. A date that is not ISO
// formatted is left out rather than sent as a zero date.
func TransactionToNotionProperties(txn domain.Transaction, key string) notionapi.Properties {
	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{Title: richText(txn.Description)},
		PropEntryKey:    notionapi.RichTextProperty{RichText: richText(key)},
		PropType:        notionapi.SelectProperty{Select: notionapi.Option{Name: string(txn.Type)}},
		PropAmount:      notionapi.NumberProperty{Number: txn.Amount},
	}

	if d, err := civil.ParseDate(txn.Date); err == nil {
		start := notionapi.Date(d.In(time.UTC))
		props[PropDate] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
	}

	if txn.Category != "" {
		props[PropCategory] = notionapi.SelectProperty{Select: notionapi.Option{Name: txn.Category}}
	}
	if txn.SubCategory != nil && *txn.SubCategory != "" {
		props[PropSubCategory] = notionapi.SelectProperty{Select: notionapi.Option{Name: *txn.SubCategory}}
	}
	if txn.ReferenceID != nil && *txn.ReferenceID != "" {
		props[PropReference] = notionapi.RichTextProperty{RichText: richText(*txn.ReferenceID)}
	}
	if txn.BalanceAfterTxn != nil {
		props[PropBalance] = notionapi.NumberProperty{Number: *txn.BalanceAfterTxn}
	}
	if txn.Notes != nil && *txn.Notes != "" {
		props[PropNotes] = notionapi.RichTextProperty{RichText: richText(*txn.Notes)}
	}

	return props
}

// extractEntryKey reads the entry key from page properties. Pages decoded
// from the API carry pointer properties; locally built ones carry values.
func extractEntryKey(page notionapi.Page) string {
	var texts []notionapi.RichText
	switch prop := page.Properties[PropEntryKey].(type) {
	case *notionapi.RichTextProperty:
		texts = prop.RichText
	case notionapi.RichTextProperty:
		texts = prop.RichText
	}
	if len(texts) == 0 {
		return ""
	}
	if texts[0].PlainText != "" {
		return texts[0].PlainText
	}
	if texts[0].Text != nil {
		return texts[0].Text.Content
	}
	return ""
}
