package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/GGital/terraform-opstella/internal/approval"

	"gopkg.in/yaml.v3"
)

// 输出格式
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// outputFormat --json 优先于 --output
func outputFormat() string {
	if jsonOutput {
		return formatJSON
	}
	switch outputFlag {
	case formatJSON, formatYAML:
		return outputFlag
	default:
		return formatTable
	}
}

// printStructured 以 JSON 或 YAML 输出；返回 false 表示应使用表格输出
func printStructured(w io.Writer, v any) (bool, error) {
	switch outputFormat() {
	case formatJSON:
		return true, printJSON(w, v)
	case formatYAML:
		return true, printYAML(w, v)
	default:
		return false, nil
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化 JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printYAML 先按 json 标签转成通用结构，保证字段名与 API 一致
func printYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化 JSON: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("转换输出结构: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("序列化 YAML: %w", err)
	}
	return enc.Close()
}

func printResponse(w io.Writer, resp *approval.Response) error {
	if done, err := printStructured(w, resp); done {
		return err
	}
	fmt.Fprintf(w, "Pipeline:   %s\n", resp.PipelineID)
	fmt.Fprintf(w, "Status:     %s\n", resp.ApprovalStatus)
	fmt.Fprintf(w, "Timestamp:  %s\n", resp.Timestamp)
	fmt.Fprintf(w, "Message:    %s\n", resp.Message)
	return nil
}

func printListTable(w io.Writer, result *approval.ListResult) {
	ids := make([]string, 0, len(result.Approvals))
	for id := range result.Approvals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPELINE\tSTATUS\tUPDATED\tDESCRIPTION")
	for _, id := range ids {
		rec := result.Approvals[id]
		desc := ""
		if rec.Description != nil {
			desc = *rec.Description
		}
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			id,
			rec.Status,
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
			desc,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d approvals\n", result.Total)
}
