package ordersync

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tournevent/pargo/pkg/shipper/pargo"
)

const (
	// MaxCommentLength bounds an order comment, in characters.
	MaxCommentLength = 25000

	commentPrefix = "Pargo: "
)

// Comment prefixes message and truncates the result to MaxCommentLength.
func Comment(message string) string {
	return Truncate(commentPrefix+message, MaxCommentLength)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func successMessage(waybill *pargo.WaybillData, link string) string {
	return fmt.Sprintf("Success! created waybill <a href='%s' target='_blank'>%s</a>", link, waybill.WaybillNumber)
}

// failureMessage embeds the raw response, or the error text as a JSON
// string when there is no response.
func failureMessage(resp *pargo.OrderResponse, err error) string {
	if err != nil {
		detail, _ := json.Marshal(err.Error())
		return "Error! " + string(detail)
	}
	if resp == nil || len(resp.Raw) == 0 {
		return "Error! null"
	}
	return "Error! " + string(resp.Raw)
}
