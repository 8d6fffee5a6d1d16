package printing

import (
	"html/template"
)

const statementTemplate = `<!DOCTYPE html>
<html lang="{{locale}}">
<head>
<meta charset="UTF-8">
<title>Debt statement{{with .BranchName}} - {{.}}{{end}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10px; color: #222; }
h1 { font-size: 16px; margin: 0 0 4px 0; }
.meta { color: #666; margin-bottom: 12px; }
table { width: 100%; border-collapse: collapse; }
th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; text-align: left; }
th { background: #f3f3f3; }
td.num, th.num { text-align: right; white-space: nowrap; }
tr.paid td { color: #888; }
.totals { margin-top: 16px; width: 40%; margin-left: auto; }
</style>
</head>
<body>
<h1>Debt statement{{with .BranchName}} - {{.}}{{end}}</h1>
<div class="meta">Generated {{dateTime .GeneratedAt}} &middot; {{count .Totals.Count}} debts</div>
<table>
<thead>
<tr>
<th>Created</th><th>Branch</th><th>Debtor</th><th>Type</th><th>Counterpart</th>
<th>Direction</th><th>Parcel</th><th>Status</th><th class="num">Amount</th><th>Paid</th>
</tr>
</thead>
<tbody>
{{range .Rows}}<tr{{if eq .Status "PAID"}} class="paid"{{end}}>
<td>{{date .CreatedAt}}</td>
<td>{{.BranchName}}</td>
<td>{{.DebtorName}}</td>
<td>{{label .DebtorType}}</td>
<td>{{.CounterpartName}}</td>
<td>{{.MovementLabelText}}</td>
<td>{{with .ParcelID}}{{.}}{{end}}</td>
<td>{{label .Status}}</td>
<td class="num">{{money .Amount}}</td>
<td>{{optionalDate .PaidAt}}</td>
</tr>
{{else}}<tr><td colspan="10">No debts match this report.</td></tr>
{{end}}</tbody>
</table>
<table class="totals">
<tr><th>Outstanding, owed to us</th><td class="num">{{money .Totals.OutstandingOwedToUs}}</td></tr>
<tr><th>Outstanding, we owe</th><td class="num">{{money .Totals.OutstandingWeOwe}}</td></tr>
<tr><th>Settled</th><td class="num">{{money .Totals.Paid}}</td></tr>
<tr><th>Open items</th><td class="num">{{count .Totals.OutstandingCount}}</td></tr>
</table>
</body>
</html>
`

func parseStatementTemplate(f *Formatter) (*template.Template, error) {
	return template.New("debt-statement").Funcs(template.FuncMap{
		"locale":       f.Locale,
		"money":        f.Money,
		"count":        f.Count,
		"date":         f.Date,
		"dateTime":     f.DateTime,
		"optionalDate": f.OptionalDate,
		"label":        f.Label,
	}).Parse(statementTemplate)
}
