package summarize

// Default prompts target Czech sources. Placeholders: {index}, {total}, {chunk}
// in ChunkUser and {text} in FinalUser.
const (
	DefaultChunkSystem = "Jsi asistent, který shrnuje texty článků v češtině. Zachováváš klíčová fakta a kontext."
	DefaultChunkUser   = "Shrň tento segment článku v češtině. Zachovej důležitá fakta, jména, data a výsledky. Segment {index} z {total}:\n\n{chunk}"
	DefaultFinalUser   = "Text článku:\n\n{text}"
	DefaultFiller      = "Klíčová informace z článku."
)

const DefaultFinalSystem = `Shrň následující článek.

PRAVIDLA:
- piš česky
- vrať PŘESNĚ 5 bodů
- body odděluj pouze čísly 1) až 5)
- žádné nadpisy, žádný jiný text`

type Prompts struct {
	ChunkSystem string `yaml:"chunk_system"`
	ChunkUser   string `yaml:"chunk_user"`
	FinalSystem string `yaml:"final_system"`
	FinalUser   string `yaml:"final_user"`
	// Filler pads summaries that came back with fewer than five points.
	Filler string `yaml:"filler"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		ChunkSystem: DefaultChunkSystem,
		ChunkUser:   DefaultChunkUser,
		FinalSystem: DefaultFinalSystem,
		FinalUser:   DefaultFinalUser,
		Filler:      DefaultFiller,
	}
}

func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	if p.ChunkSystem == "" {
		p.ChunkSystem = d.ChunkSystem
	}
	if p.ChunkUser == "" {
		p.ChunkUser = d.ChunkUser
	}
	if p.FinalSystem == "" {
		p.FinalSystem = d.FinalSystem
	}
	if p.FinalUser == "" {
		p.FinalUser = d.FinalUser
	}
	if p.Filler == "" {
		p.Filler = d.Filler
	}
	return p
}
