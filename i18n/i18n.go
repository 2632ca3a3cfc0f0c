// Package i18n holds the message catalogue for API error codes.
package i18n

import "strings"

const DefaultLang = "pt"

var catalog = map[string]map[string]string{
	"pt": {
		"required":                         "Obrigatório",
		"invalid_json":                     "JSON inválido",
		"invalid_id":                       "Identificador inválido",
		"unauthorized":                     "Não autenticado",
		"forbidden":                        "Acesso negado",
		"not_found":                        "Registro não encontrado",
		"validation_failed":                "Dados inválidos",
		"invalid_document":                 "Documento inválido",
		"duplicate_document":               "Já existe um cliente com este documento",
		"exactly_one_document":             "Informe apenas um documento: CPF ou CNPJ",
		"already_converted":                "Este orçamento já foi convertido em pedidos",
		"quote_canceled":                   "Não é possível converter um orçamento cancelado",
		"empty_quote":                      "Não é possível converter um orçamento sem itens",
		"missing_supplier":                 "Todos os itens precisam ter fornecedor antes da conversão",
		"discount_not_authorized":          "Descontos acima do limite exigem autorização",
		"invalid_transition":               "Mudança de status não permitida",
		"referenced":                       "Registro em uso, não pode ser excluído",
		"persistence_failure":              "Falha ao gravar os dados",
		"invalid_credentials":              "Usuário ou senha inválidos",
		"invalid_authorization":            "Autorização de desconto inválida ou expirada",
		"duplicate_supplier":               "Já existe um fornecedor com este código ou e-mail",
		"multiple_default_payment_options": "Apenas uma forma de pagamento pode ser padrão",
		"query_too_short":                  "Digite ao menos 2 caracteres",
		"quote_converted":                  "Orçamento convertido em %d pedidos",
	},
	"en": {
		"required":                         "Required",
		"invalid_json":                     "Invalid JSON",
		"invalid_id":                       "Invalid identifier",
		"unauthorized":                     "Not authenticated",
		"forbidden":                        "Forbidden",
		"not_found":                        "Record not found",
		"validation_failed":                "Invalid data",
		"invalid_document":                 "Invalid document",
		"duplicate_document":               "A customer with this document already exists",
		"exactly_one_document":             "Provide exactly one document: CPF or CNPJ",
		"already_converted":                "This quote has already been converted into orders",
		"quote_canceled":                   "A canceled quote cannot be converted",
		"empty_quote":                      "A quote without items cannot be converted",
		"missing_supplier":                 "Every item needs a supplier before conversion",
		"discount_not_authorized":          "Discounts above the threshold require authorization",
		"invalid_transition":               "Status change not allowed",
		"referenced":                       "Record in use, cannot be deleted",
		"persistence_failure":              "Could not store the data",
		"invalid_credentials":              "Invalid username or password",
		"invalid_authorization":            "Discount authorization is invalid or expired",
		"duplicate_supplier":               "A supplier with this code or email already exists",
		"multiple_default_payment_options": "Only one payment option can be the default",
		"query_too_short":                  "Type at least 2 characters",
		"quote_converted":                  "Quote converted into %d orders",
	},
}

// DetectLanguage picks "en" when the Accept-Language header prefers English, otherwise the default.
func DetectLanguage(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if strings.HasPrefix(h, "en") {
		return "en"
	}
	if strings.HasPrefix(h, "pt") {
		return "pt"
	}
	return DefaultLang
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}
