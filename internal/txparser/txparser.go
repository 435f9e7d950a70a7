// Package txparser converts raw transaction input into validated models.Transaction
// records. Two input shapes are accepted: newline-delimited "date, description, amount"
// text and a JSON array of pre-structured records.
package txparser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Messages reported back to the user for rejected input.
const (
	MessageInvalidLines   = "transaction data contains invalid lines"
	MessageInvalidRecords = "transaction data contains invalid records"
	MessageInvalidShape   = "transactionData must be a string or an array of records"

	ReasonFieldCount  = "格式不正确 (应为 日期, 描述, 金额)。"
	ReasonDate        = "日期格式不正确 (应为 YYYY-MM-DD)。"
	ReasonAmount      = "金额不是有效的数字。"
	ReasonNotObject   = "记录必须是包含 date, description, amount 的对象。"
	ReasonDateType    = "date 必须是字符串。"
	ReasonDescription = "description 必须是字符串。"
)

// Bounds on a parsed amount. Anything larger is rejected before any arithmetic
// or formatting touches it.
const (
	maxAmountLength   = 64
	maxAmountDigits   = 30
	maxAmountExponent = 20
)

// ASCII or full-width comma.
var fieldSeparator = regexp.MustCompile(`[,，]`)

// Parse dispatches on the JSON shape of raw: a string is parsed as line text, an
// array as structured records. An absent or null value yields no transactions.
func Parse(raw json.RawMessage) ([]models.Transaction, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, &parsererror.InputValidationError{Message: MessageInvalidShape}
		}
		return ParseLines(text)
	case '[':
		return ParseRecords(trimmed)
	default:
		return nil, &parsererror.InputValidationError{Message: MessageInvalidShape}
	}
}

// ParseLines parses newline-delimited records. Blank lines are skipped and do not
// count towards line numbering. Every line is checked; if any fails, all failures
// are returned together and no transactions are.
func ParseLines(text string) ([]models.Transaction, error) {
	var (
		transactions []models.Transaction
		problems     []*parsererror.LineError
		lineNumber   int
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineNumber++

		tx, problem := parseLine(line, lineNumber)
		if problem != nil {
			problems = append(problems, problem)
			continue
		}
		transactions = append(transactions, tx)
	}

	if len(problems) > 0 {
		return nil, &parsererror.InputValidationError{Message: MessageInvalidLines, Lines: problems}
	}
	return transactions, nil
}

func parseLine(line string, number int) (models.Transaction, *parsererror.LineError) {
	parts := fieldSeparator.Split(line, -1)
	if len(parts) != 3 {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonFieldCount}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	date, description, amountText := parts[0], parts[1], parts[2]
	if !models.ValidDate(date) {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonDate}
	}

	amount, err := parseDecimal(amountText)
	if err != nil {
		return models.Transaction{}, &parsererror.LineError{
			Line:   number,
			Reason: ReasonAmount,
			Err: &parsererror.ParseError{
				Parser: "lines",
				Field:  "amount",
				Value:  amountText,
				Err:    err,
			},
		}
	}

	return models.Transaction{Date: date, Description: description, Amount: amount}, nil
}

type record struct {
	Date        *string         `json:"date"`
	Description *string         `json:"description"`
	Amount      json.RawMessage `json:"amount"`
}

// ParseRecords parses a JSON array of {date, description, amount} objects. The date
// format is not checked, but each field must have the right type and the amount
// must be a finite number (or a numeric string). Any bad record rejects the batch.
func ParseRecords(raw json.RawMessage) ([]models.Transaction, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, &parsererror.InputValidationError{Message: MessageInvalidShape}
	}

	transactions := make([]models.Transaction, 0, len(elements))
	var problems []*parsererror.LineError

	for i, element := range elements {
		tx, problem := parseRecord(element, i+1)
		if problem != nil {
			problems = append(problems, problem)
			continue
		}
		transactions = append(transactions, tx)
	}

	if len(problems) > 0 {
		return nil, &parsererror.InputValidationError{Message: MessageInvalidRecords, Lines: problems}
	}
	return transactions, nil
}

func parseRecord(element json.RawMessage, number int) (models.Transaction, *parsererror.LineError) {
	trimmed := bytes.TrimSpace(element)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonNotObject}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonNotObject, Err: err}
	}

	var rec record
	if err := json.Unmarshal(fields["date"], &rec.Date); err != nil || rec.Date == nil {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonDateType, Err: err}
	}
	if err := json.Unmarshal(fields["description"], &rec.Description); err != nil || rec.Description == nil {
		return models.Transaction{}, &parsererror.LineError{Line: number, Reason: ReasonDescription, Err: err}
	}

	amount, err := parseAmount(fields["amount"])
	if err != nil {
		return models.Transaction{}, &parsererror.LineError{
			Line:   number,
			Reason: ReasonAmount,
			Err: &parsererror.ParseError{
				Parser: "records",
				Field:  "amount",
				Value:  string(fields["amount"]),
				Err:    err,
			},
		}
	}

	return models.Transaction{Date: *rec.Date, Description: *rec.Description, Amount: amount}, nil
}

// parseAmount accepts a JSON number or a string holding one.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, fmt.Errorf("amount is missing")
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Decimal{}, err
		}
		return parseDecimal(strings.TrimSpace(text))
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return decimal.Decimal{}, err
	}
	return parseDecimal(number.String())
}

// parseDecimal parses text as a decimal amount within the accepted bounds.
func parseDecimal(text string) (decimal.Decimal, error) {
	if len(text) > maxAmountLength {
		return decimal.Decimal{}, fmt.Errorf("amount is too long: %d characters", len(text))
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	exp := d.Exponent()
	digits := len(strings.TrimPrefix(d.Coefficient().String(), "-"))
	if digits > maxAmountDigits || exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Decimal{}, fmt.Errorf("amount %q is out of range", text)
	}
	return d, nil
}
