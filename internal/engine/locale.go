package engine

import (
	"errors"
	"fmt"

	"github.com/ashfall-game/ashfall/internal/repair"
)

// Localized failure wording. Full entries replace the narration when the
// narrator collaborator fails; the annotation formats are appended inline to
// an otherwise successful story. Data-integrity failures (model output
// corrupt beyond repair) are worded distinctly from transport failures so
// the two are tellable apart.
type failureWording struct {
	link       string
	integrity  string
	statusSync string
	imageGen   string
	saveFail   string
}

var failureMessages = map[string]failureWording{
	"en": {
		link:       "_The radio link to the narrator crackles and dies. Your action was recorded, but the wasteland does not answer. Try again._",
		integrity:  "_The narrator's reply arrived garbled beyond recovery. Your action was recorded; the story did not advance._",
		statusSync: "_[Pip-Boy sync failed: %s]_",
		imageGen:   "_[Image generation failed: %s]_",
		saveFail:   "_[Autosave failed: %s]_",
	},
	"de": {
		link:       "_Die Funkverbindung zum Erzähler bricht ab. Deine Aktion wurde vermerkt, aber das Ödland antwortet nicht. Versuch es erneut._",
		integrity:  "_Die Antwort des Erzählers kam unrettbar verstümmelt an. Deine Aktion wurde vermerkt; die Geschichte ging nicht weiter._",
		statusSync: "_[Pip-Boy-Abgleich fehlgeschlagen: %s]_",
		imageGen:   "_[Bilderzeugung fehlgeschlagen: %s]_",
		saveFail:   "_[Automatisches Speichern fehlgeschlagen: %s]_",
	},
}

func wordingFor(lang string) failureWording {
	if msgs, ok := failureMessages[lang]; ok {
		return msgs
	}
	return failureMessages["en"]
}

func failureText(lang string, err error) string {
	msgs := wordingFor(lang)
	if errors.Is(err, repair.ErrDataIntegrity) {
		return msgs.integrity
	}
	return msgs.link
}

func statusSyncText(lang string, err error) string {
	return fmt.Sprintf(wordingFor(lang).statusSync, err.Error())
}

func imageFailText(lang, errText string) string {
	return fmt.Sprintf(wordingFor(lang).imageGen, errText)
}

func saveFailText(lang string, err error) string {
	return fmt.Sprintf(wordingFor(lang).saveFail, err.Error())
}
