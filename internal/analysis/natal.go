package analysis

import (
	"fmt"

	"github.com/pcmnking/liangfstar/internal/chart"
)

// VaultGrade grades a Ming 祿 that enters a wealth vault.
type VaultGrade string

const (
	// VaultSolid means the vault holds: no self-忌 in the target.
	VaultSolid VaultGrade = "solid"
	// VaultLeaking means the target self-transforms 忌.
	VaultLeaking VaultGrade = "leaking"
)

// WealthVault is the 祿入庫 reading.
type WealthVault struct {
	Grade  VaultGrade `json:"grade" yaml:"grade"`
	Stars  int        `json:"stars" yaml:"stars"`
	Result string     `json:"result" yaml:"result"`
	Advice string     `json:"advice" yaml:"advice"`
	Vault  chart.Role `json:"vault" yaml:"vault"`
	Reason []string   `json:"reason" yaml:"reason"`
}

// WealthVault reports whether the Ming stem's 祿 lands in 田宅 or 兄弟, the
// two vault positions, and grades the vault by its self-忌.
func (a *Analyzer) WealthVault(c *chart.Chart) (WealthVault, bool) {
	ming, ok := c.Ming()
	if !ok {
		return WealthVault{}, false
	}
	target, star, stem, ok := a.flight(c, ming, chart.KindLu)
	if !ok {
		return WealthVault{}, false
	}
	if r := target.Role(); r != chart.RoleProperty && r != chart.RoleBrother {
		return WealthVault{}, false
	}

	w := WealthVault{
		Vault:  target.Role(),
		Reason: []string{fmt.Sprintf("%s %s化祿 ➜ %s", stemLabel("命宮", stem), star, target.Role())},
	}
	if _, leaking := a.selfStar(c, target, chart.KindJi); leaking {
		w.Grade = VaultLeaking
		w.Stars = 2
		w.Result = "過路財神"
		w.Advice = "有心存錢置產，但庫底有漏，錢財容易因突發開銷流失。宜強制儲蓄，以定存、保險或房產鎖住資金。"
		w.Reason = append(w.Reason, fmt.Sprintf("%s 自化忌 (漏財)", target.Role()))
	} else {
		w.Grade = VaultSolid
		w.Stars = 5
		w.Result = "大富格/聚寶盆"
		w.Advice = "對家庭與置產熱情高，財庫穩固。有錢就置產，透過不動產累積財富最為穩健。"
		w.Reason = append(w.Reason, fmt.Sprintf("%s 無自化忌 (庫穩)", target.Role()))
	}
	return w, true
}

// MentalPattern names the 福德 reading.
type MentalPattern string

const (
	// MentalConflict is 祿 and 忌 fighting inside 福德.
	MentalConflict MentalPattern = "conflict"
	// MentalObsession is the Ming 忌 entering 福德 alone.
	MentalObsession MentalPattern = "obsession"
)

// MentalState is the 福德 reading.
type MentalState struct {
	Pattern MentalPattern `json:"pattern" yaml:"pattern"`
	Label   string        `json:"label" yaml:"label"`
	Stars   int           `json:"stars" yaml:"stars"`
	Advice  string        `json:"advice" yaml:"advice"`
	Reason  string        `json:"reason" yaml:"reason"`
}

// MentalState looks for a 祿/忌 conflict in 福德: birth 祿 with birth 忌, or
// birth 祿 met by the Ming stem's 忌. Failing that, the Ming 忌 entering
// 福德 alone reads as obsession.
func (a *Analyzer) MentalState(c *chart.Chart) (MentalState, bool) {
	fude, ok := c.SectorForRole(chart.RoleFude)
	if !ok {
		return MentalState{}, false
	}
	ming, ok := c.Ming()
	if !ok {
		return MentalState{}, false
	}

	birthLu := fude.HasBirthKind(chart.KindLu)
	birthJi := fude.HasBirthKind(chart.KindJi)
	target, star, stem, landed := a.flight(c, ming, chart.KindJi)
	jiInFude := landed && target.Branch() == fude.Branch()

	const conflictAdvice = "內心常在興奮與焦慮之間拉扯，腦袋轉得快也容易鑽牛角尖。學習鈍感力，放過自己，留意睡眠與神經系統保養。"

	switch {
	case birthLu && birthJi:
		return MentalState{
			Pattern: MentalConflict,
			Label:   "祿忌交戰",
			Stars:   2,
			Advice:  conflictAdvice,
			Reason:  "福德宮內坐 生年祿 + 生年忌 (祿忌同宮)",
		}, true
	case birthLu && jiInFude:
		return MentalState{
			Pattern: MentalConflict,
			Label:   "祿忌交戰",
			Stars:   2,
			Advice:  conflictAdvice,
			Reason:  fmt.Sprintf("福德宮坐生年祿 + %s化忌入福德 (祿忌交戰)", stemLabel("命宮", stem)),
		}, true
	case jiInFude:
		return MentalState{
			Pattern: MentalObsession,
			Label:   "執著煩惱",
			Stars:   3,
			Advice:  "容易執著於自己的精神世界或嗜好，情緒內耗。多接觸大自然或哲學，轉移注意焦點。",
			Reason:  fmt.Sprintf("%s %s化忌 ➜ 福德宮 (命忌入福德)", stemLabel("命宮", stem), star),
		}, true
	}
	return MentalState{}, false
}
