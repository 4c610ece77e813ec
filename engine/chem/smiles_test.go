package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSMILES(t *testing.T) {
	t.Run("Should accept well-formed smiles", func(t *testing.T) {
		valid := []string{
			"C1CCC1",
			"CCO",
			"Cc1ccccc1",
			"CN(C)CCOC(c1ccccc1)c1ccccc1",
			"CN(C)CCCl.OC(c1ccccc1)c1ccccc1",
			"[Na+].[Cl-]",
			"O=C(c1ccccc1)c1ccccc1",
			"C%12CC%12",
			"[H][N-][H]",
			"BrCCBr",
		}
		for _, s := range valid {
			assert.NoError(t, ValidateSMILES(s), s)
		}
	})

	t.Run("Should reject malformed smiles", func(t *testing.T) {
		invalid := []string{
			"",
			"   ",
			"X",
			"CC(",
			"CC)",
			"C[",
			"C[]C",
			"C[!]",
			"C%1C",
			"abc?",
		}
		for _, s := range invalid {
			assert.Error(t, ValidateSMILES(s), s)
		}
	})
}
