/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/spf13/viper"
)

// WordProvider supplies the secret word for a round.
type WordProvider interface {
	RandomWord(lang Language) string
}

// WordTable maps language -> category -> words. It is never modified after
// construction and is safe for concurrent use.
type WordTable struct {
	categories map[Language]map[string][]string
	intn       func(int) int
}

// NewWordTable validates and wraps a language/category/word mapping.
// The default language must be present.
func NewWordTable(categories map[Language]map[string][]string) (*WordTable, error) {
	if len(categories[DefaultLanguage]) == 0 {
		return nil, fmt.Errorf("word table: no categories for default language %q", DefaultLanguage)
	}

	for lang, cats := range categories {
		if !lang.Valid() {
			return nil, fmt.Errorf("word table: unsupported language %q", lang)
		}

		for name, words := range cats {
			if len(words) == 0 {
				return nil, fmt.Errorf("word table: category %q for %q is empty", name, lang)
			}
		}
	}

	return &WordTable{
		categories: categories,
		intn:       rand.IntN,
	}, nil
}

// LoadWordTable reads a word table from a yaml, json or toml file.
func LoadWordTable(path string) (*WordTable, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("word table: read %s: %w", path, err)
	}

	raw := make(map[string]map[string][]string)
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("word table: decode %s: %w", path, err)
	}

	categories := make(map[Language]map[string][]string, len(raw))
	for lang, cats := range raw {
		categories[Language(lang)] = cats
	}

	return NewWordTable(categories)
}

// RandomWord picks a category uniformly, then a word uniformly within it.
// Unknown languages fall back to the default language.
func (t *WordTable) RandomWord(lang Language) string {
	cats, ok := t.categories[lang]
	if !ok || len(cats) == 0 {
		cats = t.categories[DefaultLanguage]
	}

	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)

	words := cats[names[t.intn(len(names))]]

	return words[t.intn(len(words))]
}

// DefaultWordTable returns the built-in word lists.
func DefaultWordTable() *WordTable {
	return &WordTable{
		categories: defaultWords,
		intn:       rand.IntN,
	}
}

var defaultWords = map[Language]map[string][]string{
	English: {
		"animals": {"Lion", "Elephant", "Giraffe", "Penguin", "Dolphin", "Tiger", "Kangaroo", "Zebra", "Panda", "Koala"},
		"food":    {"Pizza", "Burger", "Sushi", "Pasta", "Taco", "Ice Cream", "Pancake", "Waffle", "Steak", "Salad"},
		"jobs":    {"Doctor", "Teacher", "Engineer", "Artist", "Chef", "Pilot", "Firefighter", "Police", "Lawyer", "Nurse"},
		"objects": {"Chair", "Table", "Laptop", "Phone", "Book", "Pen", "Car", "Bicycle", "Clock", "Lamp"},
	},
	Albanian: {
		"animals": {"Luani", "Elefanti", "Gjirafa", "Pinguini", "Delfini", "Tigri", "Kanguri", "Zebra", "Panda", "Koala", "Qeni", "Maca", "Zog", "Peshk", "Kali", "Lopa", "Dhi", "Derri", "Lepuri", "Mi", "Ari", "Ujku", "Dhelpra", "Dreri", "Mjalta"},
		"food":    {"Pica", "Burger", "Sushi", "Makarona", "Taco", "Akullore", "Pankek", "Waffle", "Biftek", "Sallatë", "Bukë", "Qumësht", "Djathë", "Vezë", "Mollë", "Banane", "Portokall", "Domate", "Qepë", "Patate", "Oriz", "Supë", "Tortë", "Biskota", "Çokollatë"},
		"jobs":    {"Doktor", "Mësues", "Inxhinier", "Artist", "Kuzhinier", "Pilot", "Zjarrfikës", "Polic", "Avokat", "Infermier", "Shkencëtar", "Shkrimtar", "Muzikant", "Këngëtar", "Valltar", "Aktor", "Gazetar", "Fotograf", "Arkitekt", "Kontabilist", "Menaxher", "Shofer", "Fermer", "Ndërtues", "Programues"},
		"objects": {"Karrige", "Tavolinë", "Laptop", "Telefon", "Libër", "Stilolaps", "Makinë", "Biçikletë", "Orë", "Llampë", "Derë", "Dritare", "Krevat", "Sofë", "Pasqyrë", "Foto", "Çantë", "Kuti", "Çelës", "Kyç", "Kupë", "Pjatë", "Lugë", "Pirun", "Thikë"},
	},
	Spanish: {
		"animals": {"León", "Elefante", "Jirafa", "Pingüino", "Delfín", "Tigre", "Canguro", "Cebra", "Panda", "Koala"},
		"food":    {"Pizza", "Hamburguesa", "Sushi", "Pasta", "Taco", "Helado", "Panqueque", "Waffle", "Bistec", "Ensalada"},
		"jobs":    {"Doctor", "Maestro", "Ingeniero", "Artista", "Chef", "Piloto", "Bombero", "Policía", "Abogado", "Enfermero"},
		"objects": {"Silla", "Mesa", "Portátil", "Teléfono", "Libro", "Bolígrafo", "Coche", "Bicicleta", "Reloj", "Lámpara"},
	},
	German: {
		"animals": {"Löwe", "Elefant", "Giraffe", "Pinguin", "Delfin", "Tiger", "Känguru", "Zebra", "Panda", "Koala"},
		"food":    {"Pizza", "Burger", "Sushi", "Pasta", "Taco", "Eis", "Pfannkuchen", "Waffel", "Steak", "Salat"},
		"jobs":    {"Arzt", "Lehrer", "Ingenieur", "Künstler", "Koch", "Pilot", "Feuerwehrmann", "Polizist", "Anwalt", "Krankenpfleger"},
		"objects": {"Stuhl", "Tisch", "Laptop", "Telefon", "Buch", "Stift", "Auto", "Fahrrad", "Uhr", "Lampe"},
	},
}
