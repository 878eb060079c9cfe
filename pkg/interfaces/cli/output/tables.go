package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/shopfloor/pkg/application/dto"
)

// Components prints the printed component table
func (p *Printer) Components(list []dto.ComponentView) error {
	return p.Render(list, func(w io.Writer) {
		heading(w, "🖨️  Printed Components")
		fmt.Fprintf(w, "%-28s %-9s %-9s %-9s %-6s %-8s %-5s\n",
			"Name", "Printed", "Ready", "Pending", "Batch", "Minutes", "Low")
		fmt.Fprintf(w, "%-28s %-9s %-9s %-9s %-6s %-8s %-5s\n", rule(28, 9, 9, 9, 6, 8, 5)...)
		for _, c := range list {
			low := ""
			if c.LowStock {
				low = criticalColor.Sprint("low")
			}
			fmt.Fprintf(w, "%-28s %-9d %-9d %-9d %-6d %-8d %s\n",
				c.Name, c.Quantity, c.Completed, c.Pending, c.BatchSize, c.PrintTimeMinutes, low)
		}
		fmt.Fprintln(w)
	})
}

// Purchased prints the purchased component table
func (p *Printer) Purchased(list []dto.PurchasedView) error {
	return p.Render(list, func(w io.Writer) {
		heading(w, "📦 Purchased Components")
		fmt.Fprintf(w, "%-32s %-10s %-8s %-10s %-5s\n", "Name", "Quantity", "Unit", "Threshold", "Low")
		fmt.Fprintf(w, "%-32s %-10s %-8s %-10s %-5s\n", rule(32, 10, 8, 10, 5)...)
		for _, c := range list {
			threshold := "-"
			if c.LowStockThreshold != nil {
				threshold = c.LowStockThreshold.String()
			}
			low := ""
			if c.LowStock {
				low = criticalColor.Sprint("low")
			}
			fmt.Fprintf(w, "%-32s %-10s %-8s %-10s %s\n", c.Name, c.Quantity.String(), c.Unit, threshold, low)
		}
		fmt.Fprintln(w)
	})
}

// Parts prints the part table
func (p *Printer) Parts(list []dto.PartView) error {
	return p.Render(list, func(w io.Writer) {
		heading(w, "🔩 Parts")
		fmt.Fprintf(w, "%-24s %-10s %-10s %-10s %-10s\n", "Name", "Assembled", "Available", "Committed", "Buildable")
		fmt.Fprintf(w, "%-24s %-10s %-10s %-10s %-10s\n", rule(24, 10, 10, 10, 10)...)
		for _, part := range list {
			fmt.Fprintf(w, "%-24s %-10d %-10d %-10s %-10d\n",
				part.Name, part.Assembled, part.Available, part.Committed.String(), part.Capacity)
		}
		fmt.Fprintln(w)
	})
}

// Products prints the product table
func (p *Printer) Products(list []dto.ProductView) error {
	return p.Render(list, func(w io.Writer) {
		heading(w, "🏏 Products")
		fmt.Fprintf(w, "%-28s %-10s %-10s\n", "Name", "In Stock", "Buildable")
		fmt.Fprintf(w, "%-28s %-10s %-10s\n", rule(28, 10, 10)...)
		for _, product := range list {
			fmt.Fprintf(w, "%-28s %-10d %-10d\n", product.Name, product.Quantity, product.Capacity)
		}
		fmt.Fprintln(w)
	})
}

// Recipes prints every materialized recipe row grouped by output
func (p *Printer) Recipes(rows []dto.RecipeRow) error {
	return p.Render(rows, func(w io.Writer) {
		heading(w, "📋 Bill of Materials")
		last := ""
		for _, r := range rows {
			if r.OutputName != last {
				if last != "" {
					fmt.Fprintln(w)
				}
				headerColor.Fprintln(w, r.OutputName)
				last = r.OutputName
			}
			fmt.Fprintf(w, "  %-8s x %-32s (%s)\n", r.Quantity.String(), r.InputName, r.InputKind)
		}
		fmt.Fprintln(w)
	})
}

// Capacity prints one capacity result with its per-input breakdown
func (p *Printer) Capacity(result *dto.CapacityResult) error {
	return p.Render(result, func(w io.Writer) {
		heading(w, fmt.Sprintf("🔧 Capacity: %s", result.EntityName))
		fmt.Fprintf(w, "Max buildable: %d\n", result.MaxBuildable)
		if len(result.Bottlenecks) > 0 {
			fmt.Fprintf(w, "Bottleneck:    %s\n", strings.Join(result.Bottlenecks, ", "))
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "%-32s %-10s %-10s %-10s %-10s\n", "Input", "Type", "Required", "Available", "Supports")
		fmt.Fprintf(w, "%-32s %-10s %-10s %-10s %-10s\n", rule(32, 10, 10, 10, 10)...)
		for _, in := range result.Inputs {
			supports := fmt.Sprintf("%-10d", in.Buildable)
			if in.Binding {
				supports = criticalColor.Sprint(supports)
			}
			fmt.Fprintf(w, "%-32s %-10s %-10s %-10s %s\n",
				in.InputName, in.InputKind, in.Required.String(), in.Available.String(), supports)
		}
		fmt.Fprintln(w)
	})
}

// ShortagePlan prints the print plan toward the target buffer
func (p *Printer) ShortagePlan(plan *dto.ShortagePlan) error {
	return p.Render(plan, func(w io.Writer) {
		heading(w, fmt.Sprintf("📊 Print Plan (target %d products)", plan.TargetBuffer))
		fmt.Fprintf(w, "%-28s %-8s %-8s %-8s %-8s %-9s %-9s %-9s\n",
			"Component", "Need", "Stock", "Short", "Batches", "Time", "Supports", "Priority")
		fmt.Fprintf(w, "%-28s %-8s %-8s %-8s %-8s %-9s %-9s %-9s\n", rule(28, 8, 8, 8, 8, 9, 9, 9)...)
		for _, l := range plan.Lines {
			fmt.Fprintf(w, "%-28s %-8d %-8d %-8d %-8d %-9s %-9d %s\n",
				l.ComponentName, l.TotalNeeded, l.CurrentStock, l.Shortage, l.BatchesNeeded,
				minutes(l.TotalPrintTime), l.ProductsSupportable, priority(l.Priority))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Total batches: %d\n", plan.TotalBatches)
		fmt.Fprintf(w, "Total print time: %s\n\n", minutes(plan.TotalPrintTime))
	})
}

// BatchPriorities prints the print-batch queue
func (p *Printer) BatchPriorities(lines []dto.BatchPriorityLine) error {
	return p.Render(lines, func(w io.Writer) {
		heading(w, "🗂️  Batch Priorities")
		if len(lines) == 0 {
			fmt.Fprintf(w, "Nothing to print.\n\n")
			return
		}
		fmt.Fprintf(w, "%-28s %-8s %-8s %-8s %-8s %-9s %-9s\n",
			"Component", "Stock", "Need", "Short", "Batches", "Time", "Priority")
		fmt.Fprintf(w, "%-28s %-8s %-8s %-8s %-8s %-9s %-9s\n", rule(28, 8, 8, 8, 8, 9, 9)...)
		for _, l := range lines {
			fmt.Fprintf(w, "%-28s %-8d %-8d %-8d %-8d %-9s %s\n",
				l.ComponentName, l.CurrentStock, l.Needed, l.Shortage, l.BatchesNeeded,
				minutes(l.TotalPrintTime), priorityLabel(l.Priority.String(), 9))
		}
		fmt.Fprintln(w)
	})
}

// Recommendations prints the smart priority list
func (p *Printer) Recommendations(recs []dto.Recommendation) error {
	return p.Render(recs, func(w io.Writer) {
		heading(w, "🎯 What To Do Next")
		if len(recs) == 0 {
			fmt.Fprintf(w, "Nothing needs attention.\n\n")
			return
		}
		for i, r := range recs {
			fmt.Fprintf(w, "%d. %s %s %s x %s\n", i+1, priority(r.Priority),
				strings.ReplaceAll(string(r.Action), "_", " "), r.Quantity.String(), r.TargetName)
			fmt.Fprintf(w, "   %s\n", r.Reason)
		}
		fmt.Fprintln(w)
	})
}

// PostProcessingTasks prints components waiting for finishing
func (p *Printer) PostProcessingTasks(tasks []dto.PostProcessingTask) error {
	return p.Render(tasks, func(w io.Writer) {
		heading(w, "🧽 Post-Processing")
		if len(tasks) == 0 {
			fmt.Fprintf(w, "Nothing waiting.\n\n")
			return
		}
		fmt.Fprintf(w, "%-28s %-8s %-8s %-9s %s\n", "Component", "Pending", "Ready", "Priority", "Reason")
		fmt.Fprintf(w, "%-28s %-8s %-8s %-9s %s\n", rule(28, 8, 8, 9, 6)...)
		for _, t := range tasks {
			fmt.Fprintf(w, "%-28s %-8d %-8d %s %s\n",
				t.ComponentName, t.PendingQuantity, t.Completed, priority(t.Priority), t.Reason)
		}
		fmt.Fprintln(w)
	})
}

// AssemblyTasks prints the per-part assembly list
func (p *Printer) AssemblyTasks(tasks []dto.AssemblyTask) error {
	return p.Render(tasks, func(w io.Writer) {
		heading(w, "🛠️  Assembly")
		fmt.Fprintf(w, "%-24s %-6s %-10s %-10s %-7s %-9s %s\n",
			"Part", "Ready", "Buildable", "Available", "Needed", "Urgency", "Missing")
		fmt.Fprintf(w, "%-24s %-6s %-10s %-10s %-7s %-9s %s\n", rule(24, 6, 10, 10, 7, 9, 7)...)
		for _, t := range tasks {
			fmt.Fprintf(w, "%-24s %-6s %-10d %-10d %-7d %s %s\n",
				t.PartName, yesNo(t.ComponentsReady), t.CanAssemble, t.Available, t.Needed,
				priority(t.Urgency), strings.Join(t.MissingComponents, ", "))
		}
		fmt.Fprintln(w)
	})
}

// LowStock prints everything below its threshold
func (p *Printer) LowStock(report *dto.LowStockReport) error {
	return p.Render(report, func(w io.Writer) {
		heading(w, "⚠️  Low Stock")
		if len(report.Printed) == 0 && len(report.Purchased) == 0 {
			fmt.Fprintf(w, "All stock above thresholds.\n\n")
			return
		}
		for _, c := range report.Printed {
			fmt.Fprintf(w, "%-32s %6d ready (%d pending)\n", c.Name, c.Completed, c.Pending)
		}
		for _, c := range report.Purchased {
			threshold := ""
			if c.LowStockThreshold != nil {
				threshold = c.LowStockThreshold.String()
			}
			fmt.Fprintf(w, "%-32s %6s %s (threshold %s)\n", c.Name, c.Quantity.String(), c.Unit, threshold)
		}
		fmt.Fprintln(w)
	})
}

// Dashboard prints the summary view
func (p *Printer) Dashboard(d *dto.Dashboard) error {
	return p.Render(d, func(w io.Writer) {
		heading(w, "📊 Shop Floor Summary")
		fmt.Fprintf(w, "Printed components: %d (%d ready, %d pending)\n", d.TotalPrinted, d.Completed, d.Pending)
		fmt.Fprintf(w, "Target buffer:      %d products\n", d.TargetBuffer)
		fmt.Fprintf(w, "Shortages:          %d (%s to print)\n", d.ShortageCount, minutes(d.TotalPrintTime))
		low := fmt.Sprintf("%d", d.LowStockCount)
		if d.LowStockCount > 0 {
			low = urgentColor.Sprint(low)
		}
		fmt.Fprintf(w, "Low stock items:    %s\n\n", low)
		for _, product := range d.Products {
			fmt.Fprintf(w, "%-28s %d in stock, %d buildable\n", product.Name, product.Quantity, product.Capacity)
		}
		fmt.Fprintln(w)
	})
}

// ImportSummary prints what an import touched
func (p *Printer) ImportSummary(s *dto.ImportSummary) error {
	return p.Render(s, func(w io.Writer) {
		fmt.Fprintf(w, "✅ Imported %d printed, %d purchased, %d parts, %d products\n",
			s.Printed, s.Purchased, s.Parts, s.Products)
		if len(s.Skipped) > 0 {
			fmt.Fprintf(w, "Skipped (not in catalog): %s\n", strings.Join(s.Skipped, ", "))
		}
	})
}
