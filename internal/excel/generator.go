package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/numbering"
)

const (
	summarySheet   = "Resumo"
	contractsSheet = "Contratos"
	maxSheetName   = 31
)

var contractHeaders = []string{
	"Número",
	"Versão",
	"Título",
	"Tipo",
	"Status",
	"Início",
	"Término",
	"Assinatura",
	"Valor",
	"Moeda",
	"Renovação automática",
	"Assinaturas",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a summary sheet, the full contract list and one sheet per contract type.
func (g *Generator) Generate(report model.ContractReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, report)

	if _, err := file.NewSheet(contractsSheet); err != nil {
		return nil, err
	}
	g.writeContracts(file, contractsSheet, report.Contracts)

	usedNames := map[string]struct{}{summarySheet: {}, contractsSheet: {}}
	for _, group := range groupByType(report.Contracts) {
		sheetName := buildSheetName(string(group.contractType), usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeContracts(file, sheetName, group.contracts)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ContractReport) {
	stats := report.Analytics

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Gerado em")
	set("B1", formatDateTime(report.GeneratedAt))
	set("A2", "Filtro")
	set("B2", describeFilter(report.Filter))
	set("A3", "Total de contratos")
	set("B3", stats.TotalContracts)
	set("A4", "Contratos ativos")
	set("B4", stats.ActiveContracts)
	set("A5", "Aguardando assinatura")
	set("B5", stats.PendingSignatures)
	set("A6", fmt.Sprintf("Vencendo em %d dias", stats.HorizonDays))
	set("B6", stats.ExpiringSoon)
	set("A7", "Valor total")
	set("B7", stats.TotalValue.StringFixed(2))
	set("A8", "Valor médio")
	set("B8", stats.AverageContractValue.StringFixed(2))
	set("A9", "Contratos com assinaturas, %")
	set("B9", formatPercent(&stats.SignatureCompletionRate))
	set("A10", "Taxa de renovação, %")
	set("B10", formatPercent(stats.RenewalRate))

	tableRow := 12
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Quantidade")
	statuses := make([]string, 0, len(stats.ContractsByStatus))
	for status := range stats.ContractsByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for i, status := range statuses {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), status)
		set(fmt.Sprintf("B%d", row), stats.ContractsByStatus[model.ContractStatus(status)])
	}

	tableRow += len(statuses) + 2
	set(fmt.Sprintf("A%d", tableRow), "Tipo")
	set(fmt.Sprintf("B%d", tableRow), "Quantidade")
	types := make([]string, 0, len(stats.ContractsByType))
	for contractType := range stats.ContractsByType {
		types = append(types, string(contractType))
	}
	sort.Strings(types)
	for i, contractType := range types {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), contractType)
		set(fmt.Sprintf("B%d", row), stats.ContractsByType[model.ContractType(contractType)])
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 40)
}

func (g *Generator) writeContracts(file *excelize.File, sheet string, contracts []model.Contract) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	for i, header := range contractHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, c := range contracts {
		row := 2 + i
		progress := model.Progress(c.Signatures)
		set(fmt.Sprintf("A%d", row), numbering.Display(c.ContractNumber))
		set(fmt.Sprintf("B%d", row), c.Version)
		set(fmt.Sprintf("C%d", row), c.Title)
		set(fmt.Sprintf("D%d", row), string(c.ContractType))
		set(fmt.Sprintf("E%d", row), string(c.Status))
		set(fmt.Sprintf("F%d", row), formatDate(c.StartDate))
		set(fmt.Sprintf("G%d", row), formatDatePtr(c.EndDate))
		set(fmt.Sprintf("H%d", row), formatDatePtr(c.SignatureDate))
		set(fmt.Sprintf("I%d", row), c.TotalValue.StringFixed(2))
		set(fmt.Sprintf("J%d", row), c.Currency)
		set(fmt.Sprintf("K%d", row), formatBool(c.AutoRenewal))
		set(fmt.Sprintf("L%d", row), fmt.Sprintf("%d/%d", progress.SignedCount, progress.TotalSignatories))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 8)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "E", 22)
	_ = file.SetColWidth(sheet, "F", "H", 12)
	_ = file.SetColWidth(sheet, "I", "I", 16)
	_ = file.SetColWidth(sheet, "J", "L", 12)
}

type typeGroup struct {
	contractType model.ContractType
	contracts    []model.Contract
}

func groupByType(contracts []model.Contract) []typeGroup {
	index := map[model.ContractType]int{}
	var groups []typeGroup
	for _, c := range contracts {
		i, ok := index[c.ContractType]
		if !ok {
			i = len(groups)
			index[c.ContractType] = i
			groups = append(groups, typeGroup{contractType: c.ContractType})
		}
		groups[i].contracts = append(groups[i].contracts, c)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].contractType < groups[j].contractType })
	return groups
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName("Tipo - " + strings.TrimSpace(name))
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Planilha"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Planilha"
	}
	return value
}

func describeFilter(f model.ContractFilter) string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.ContractType != "" {
		parts = append(parts, "tipo="+string(f.ContractType))
	}
	if f.StartFrom != nil {
		parts = append(parts, "início>="+formatDate(*f.StartFrom))
	}
	if f.EndUntil != nil {
		parts = append(parts, "término<="+formatDate(*f.EndUntil))
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		parts = append(parts, fmt.Sprintf("busca=%q", term))
	}
	if len(parts) == 0 {
		return "todos"
	}
	return strings.Join(parts, ", ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04:05")
}

func formatPercent(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatBool(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
