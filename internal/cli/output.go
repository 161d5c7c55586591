package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintRecords renders a ";"-separated record list with one record per
// line, "," fields separated by tabs.
func (o *Output) PrintRecords(payload string, headers ...string) {
	records := splitRecords(payload)

	if o.format == "json" {
		rows := make([]map[string]string, 0, len(records))
		for _, record := range records {
			fields := strings.Split(record, ",")
			row := map[string]string{}
			for i, h := range headers {
				if i < len(fields) {
					row[h] = fields[i]
				}
			}
			rows = append(rows, row)
		}
		data, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println(strings.Join(headers, "\t"))
	for _, record := range records {
		fmt.Println(strings.ReplaceAll(record, ",", "\t"))
	}
}

func splitRecords(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, ";")
}
