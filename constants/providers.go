package constants

// ProviderHint maps a known vendor to its default category and the keywords
// that identify it in file names and bill text.
type ProviderHint struct {
	ProviderID   string
	ProviderName string
	Category     Category
	Keywords     []string
}

// Generic HOA identity applied when a statement carries HOA details but no provider.
const (
	HOAProviderID   = "expensas"
	HOAProviderName = "Expensas consorcio"
	HOACurrency     = "ARS"
)

var ProviderHints = []ProviderHint{
	{ProviderID: "personal", ProviderName: "Personal (Fibertel)", Category: Internet, Keywords: []string{"personal", "fibertel", "telecom argentina", "cablevision"}},
	{ProviderID: "flow", ProviderName: "Flow (Cablevisión Telecom)", Category: Internet, Keywords: []string{"flow", "fibertel flow", "flow empresas"}},
	{ProviderID: "telecentro", ProviderName: "Telecentro", Category: Internet, Keywords: []string{"telecentro"}},
	{ProviderID: "claro", ProviderName: "Claro", Category: Internet, Keywords: []string{"claro"}},
	{ProviderID: "movistar", ProviderName: "Movistar", Category: Internet, Keywords: []string{"movistar"}},
	{ProviderID: "movistar_tv", ProviderName: "Movistar TV", Category: Internet, Keywords: []string{"movistar tv", "movistar play"}},
	{ProviderID: "iplan", ProviderName: "iPlan", Category: Internet, Keywords: []string{"iplan", "iplan fiber"}},
	{ProviderID: "fibercorp", ProviderName: "Fibercorp", Category: Internet, Keywords: []string{"fibercorp", "telecom empresas"}},
	{ProviderID: "telecom", ProviderName: "Telecom Argentina", Category: Internet, Keywords: []string{"telecom argentina"}},
	{ProviderID: "edesur", ProviderName: "Edesur", Category: Electricity, Keywords: []string{"edesur"}},
	{ProviderID: "edenor", ProviderName: "Edenor", Category: Electricity, Keywords: []string{"edenor"}},
	{ProviderID: "epec", ProviderName: "EPEC (Córdoba)", Category: Electricity, Keywords: []string{"epec"}},
	{ProviderID: "edea", ProviderName: "EDEA", Category: Electricity, Keywords: []string{"edea"}},
	{ProviderID: "edesa", ProviderName: "EDESA", Category: Electricity, Keywords: []string{"edesa"}},
	{ProviderID: "epe_santafe", ProviderName: "EPE Santa Fe", Category: Electricity, Keywords: []string{"epe", "energia santafe"}},
	{ProviderID: "aysa", ProviderName: "AySA", Category: Water, Keywords: []string{"aysa", "agua y saneamiento"}},
	{ProviderID: "aguas_cordobesas", ProviderName: "Aguas Cordobesas", Category: Water, Keywords: []string{"aguas cordobesas"}},
	{ProviderID: "metrogas", ProviderName: "Metrogas", Category: Gas, Keywords: []string{"metrogas"}},
	{ProviderID: "naturgy", ProviderName: "Naturgy", Category: Gas, Keywords: []string{"naturgy", "gas natural ban", "gasban"}},
	{ProviderID: "camuzzi", ProviderName: "Camuzzi Gas", Category: Gas, Keywords: []string{"camuzzi"}},
	{ProviderID: "expensas_genericas", ProviderName: "Expensas / Consorcio", Category: HOA, Keywords: []string{"expensa", "consorcio", "administracion"}},
	{ProviderID: "visa", ProviderName: "Visa", Category: CreditCard, Keywords: []string{"visa"}},
	{ProviderID: "mastercard", ProviderName: "Mastercard", Category: CreditCard, Keywords: []string{"mastercard"}},
	{ProviderID: "amex", ProviderName: "American Express", Category: CreditCard, Keywords: []string{"amex", "american express"}},
	{ProviderID: "naranja", ProviderName: "Tarjeta Naranja X", Category: CreditCard, Keywords: []string{"naranja", "tarjeta naranja", "naranja x"}},
	{ProviderID: "cabal", ProviderName: "Cabal", Category: CreditCard, Keywords: []string{"cabal"}},
	{ProviderID: "maestro", ProviderName: "Maestro", Category: CreditCard, Keywords: []string{"maestro"}},
	{ProviderID: "coto", ProviderName: "Coto", Category: Other, Keywords: []string{"coto"}},
	{ProviderID: "mercadopago", ProviderName: "Mercado Pago", Category: Other, Keywords: []string{"mercado pago", "mp"}},
	{ProviderID: "uala", ProviderName: "Ualá", Category: Other, Keywords: []string{"uala"}},
}

// FindProviderHint looks up a hint by exact provider id.
func FindProviderHint(providerID string) (ProviderHint, bool) {
	for _, h := range ProviderHints {
		if h.ProviderID == providerID {
			return h, true
		}
	}
	return ProviderHint{}, false
}
