package constants

// CategoryKeywords is searched in order; the first category with a keyword
// contained in any normalized candidate string wins.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

var CategoryKeywordTable = []CategoryKeywords{
	{Category: Electricity, Keywords: []string{"edesur", "edenor", "epec", "electric", "electricidad", "luz", "edea", "edesa", "epe", "energia"}},
	{Category: Water, Keywords: []string{"aysa", "agua", "aguas", "aguas cordobesas", "agua y saneamiento"}},
	{Category: Gas, Keywords: []string{"metrogas", "naturgy", "gas", "gas natural ban", "gasban", "camuzzi"}},
	{Category: Internet, Keywords: []string{"telecentro", "fibertel", "cablevision", "personal", "claro", "movistar", "internet", "wifi", "fibra", "flow", "iplan", "fibercorp"}},
	{Category: HOA, Keywords: []string{"expensa", "consorcio", "administracion", "edificio"}},
	{Category: CreditCard, Keywords: []string{"visa", "mastercard", "amex", "american express", "maestro", "cabal", "naranja"}},
	{Category: Other, Keywords: []string{"mercado pago", "uala", "billetera"}},
}

// MoneyLineKeywords mark lines worth keeping when the prompt text is reduced.
var MoneyLineKeywords = []string{`\$`, "TOTAL", "Importe", "Vencim", "Periodo", "Período"}
