package model

// Label assigns series ids to an output naming template.
type Label struct {
	Template string   `yaml:"template" json:"template"`
	Formats  []string `yaml:"formats" json:"formats"`
	Series   []string `yaml:"series" json:"series"`
}

// Labels is the ordered output of a labeling pass.
type Labels []Label
