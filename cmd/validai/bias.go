package main

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// defaultMediaBiasTable maps Brazilian media outlets to a coarse political
// bias category. Official (.gov.br) and academic (.edu.br) sources are
// classified as CENTRO because they are institutional, not editorial.
var defaultMediaBiasTable = []MediaBiasEntry{
	// ESQUERDA
	{Domain: "brasil247.com", Name: "Brasil 247", Bias: BiasLeft},
	{Domain: "cartacapital.com.br", Name: "Carta Capital", Bias: BiasLeft},
	{Domain: "theintercept.com", Name: "The Intercept Brasil", Bias: BiasLeft},
	{Domain: "brasildefato.com.br", Name: "Brasil de Fato", Bias: BiasLeft},
	{Domain: "jornalggn.com.br", Name: "GGN", Bias: BiasLeft},
	{Domain: "redebrasilatual.com.br", Name: "Rede Brasil Atual", Bias: BiasLeft},
	{Domain: "diariodocentrodomundo.com.br", Name: "DCM", Bias: BiasLeft},

	// CENTRO
	{Domain: "g1.globo.com", Name: "G1", Bias: BiasCenter},
	{Domain: "globo.com", Name: "Globo", Bias: BiasCenter},
	{Domain: "uol.com.br", Name: "UOL", Bias: BiasCenter},
	{Domain: "folha.uol.com.br", Name: "Folha de S.Paulo", Bias: BiasCenter},
	{Domain: "estadao.com.br", Name: "Estadão", Bias: BiasCenter},
	{Domain: "bbc.com", Name: "BBC Brasil", Bias: BiasCenter},
	{Domain: "bbc.co.uk", Name: "BBC", Bias: BiasCenter},
	{Domain: "oglobo.globo.com", Name: "O Globo", Bias: BiasCenter},
	{Domain: "cnnbrasil.com.br", Name: "CNN Brasil", Bias: BiasCenter},
	{Domain: "valor.globo.com", Name: "Valor Econômico", Bias: BiasCenter},
	{Domain: "exame.com", Name: "Exame", Bias: BiasCenter},
	{Domain: "band.uol.com.br", Name: "Band", Bias: BiasCenter},
	{Domain: "sbt.com.br", Name: "SBT", Bias: BiasCenter},
	{Domain: "r7.com", Name: "R7", Bias: BiasCenter},
	{Domain: "ig.com.br", Name: "iG", Bias: BiasCenter},
	{Domain: "terra.com.br", Name: "Terra", Bias: BiasCenter},
	{Domain: "poder360.com.br", Name: "Poder360", Bias: BiasCenter},
	{Domain: "metropoles.com", Name: "Metrópoles", Bias: BiasCenter},
	{Domain: "nexojornal.com.br", Name: "Nexo", Bias: BiasCenter},
	{Domain: "agenciabrasil.ebc.com.br", Name: "Agência Brasil", Bias: BiasCenter},

	// DIREITA
	{Domain: "gazetadopovo.com.br", Name: "Gazeta do Povo", Bias: BiasRight},
	{Domain: "jovempan.com.br", Name: "Jovem Pan", Bias: BiasRight},
	{Domain: "veja.abril.com.br", Name: "Veja", Bias: BiasRight},
	{Domain: "revistaoeste.com", Name: "Revista Oeste", Bias: BiasRight},
	{Domain: "conexaopolitica.com.br", Name: "Conexão Política", Bias: BiasRight},
	{Domain: "oantagonista.com", Name: "O Antagonista", Bias: BiasRight},
	{Domain: "tercalivre.com.br", Name: "Terça Livre", Bias: BiasRight},

	// Fontes oficiais e acadêmicas (CENTRO)
	{Domain: ".gov.br", Name: "Governo Federal", Bias: BiasCenter},
	{Domain: ".edu.br", Name: "Instituição de Ensino", Bias: BiasCenter},
	{Domain: "ibge.gov.br", Name: "IBGE", Bias: BiasCenter},
	{Domain: "ipea.gov.br", Name: "IPEA", Bias: BiasCenter},
	{Domain: "planalto.gov.br", Name: "Planalto", Bias: BiasCenter},
	{Domain: "senado.leg.br", Name: "Senado Federal", Bias: BiasCenter},
	{Domain: "camara.leg.br", Name: "Câmara dos Deputados", Bias: BiasCenter},
	{Domain: "stf.jus.br", Name: "STF", Bias: BiasCenter},
	{Domain: "tse.jus.br", Name: "TSE", Bias: BiasCenter},
}

// BiasClassifier tags sources with a political bias category using the
// static media table
type BiasClassifier struct {
	table []MediaBiasEntry
}

// NewBiasClassifier creates a classifier over the given table
func NewBiasClassifier(table []MediaBiasEntry) *BiasClassifier {
	return &BiasClassifier{table: table}
}

// LoadBiasTable returns the media bias table, reading a YAML override
// file when a path is configured
func LoadBiasTable(path string) ([]MediaBiasEntry, error) {
	if path == "" {
		return defaultMediaBiasTable, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrConfigInvalid, "failed to read bias table", err)
	}

	var table []MediaBiasEntry
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, NewConfigError(ErrConfigInvalid, "failed to parse bias table", err)
	}
	for i, entry := range table {
		if entry.Domain == "" || !validBias(entry.Bias) {
			return nil, NewConfigError(ErrConfigInvalid,
				fmt.Sprintf("invalid bias table entry %d (%q/%q)", i, entry.Domain, entry.Bias), nil)
		}
	}
	return table, nil
}

// Classify maps a source's URL and display name to a bias category.
// Domain matching is substring containment, so subdomains match their
// parent entry. Hostnames ending in .gov.br or .edu.br are forced to
// CENTRO even when absent from the table. Malformed URLs and unmatched
// sources yield DESCONHECIDO.
func (b *BiasClassifier) Classify(rawURL, sourceName string) string {
	if rawURL == "" {
		return BiasUnknown
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return BiasUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	for _, entry := range b.table {
		if strings.Contains(host, entry.Domain) {
			return entry.Bias
		}
	}

	if strings.HasSuffix(host, ".gov.br") || strings.HasSuffix(host, ".edu.br") {
		return BiasCenter
	}

	if name := strings.ToLower(strings.TrimSpace(sourceName)); name != "" {
		for _, entry := range b.table {
			entryName := strings.ToLower(entry.Name)
			if strings.Contains(name, entryName) || strings.Contains(entryName, name) {
				return entry.Bias
			}
		}
	}

	return BiasUnknown
}

// Distribution computes the percentage breakdown of a source list across
// bias buckets. Each bucket rounds independently, so the sum may be 99 or
// 101. An empty list yields all zeroes.
func (b *BiasClassifier) Distribution(sources []Source) BiasDistribution {
	total := len(sources)
	if total == 0 {
		return BiasDistribution{}
	}

	var left, center, right, unknown int
	for _, s := range sources {
		switch s.PoliticalBias {
		case BiasLeft:
			left++
		case BiasCenter:
			center++
		case BiasRight:
			right++
		default:
			unknown++
		}
	}

	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(total) * 100))
	}
	return BiasDistribution{
		Esquerda:     pct(left),
		Centro:       pct(center),
		Direita:      pct(right),
		Desconhecido: pct(unknown),
	}
}
