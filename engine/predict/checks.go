package predict

import (
	"errors"
	"fmt"

	"github.com/chemgate/chemgate/engine/chem"
	"github.com/chemgate/chemgate/engine/schema"
)

// smilesCheck builds a required-field SMILES validator. The label names the
// field in the error message the way the prediction workers report it:
// "Cannot parse <label> smiles with rdkit." or, with an empty label,
// "Cannot parse smiles with rdkit."
func smilesCheck(label string) schema.CheckFunc {
	msg := "Cannot parse smiles with rdkit."
	if label != "" {
		msg = fmt.Sprintf("Cannot parse %s smiles with rdkit.", label)
	}
	return func(value any) error {
		switch v := value.(type) {
		case string:
			if chem.ValidateSMILES(v) != nil {
				return errors.New(msg)
			}
		case []string:
			for _, item := range v {
				if chem.ValidateSMILES(item) != nil {
					return errors.New(msg)
				}
			}
		}
		return nil
	}
}

// optionalSmilesCheck behaves like smilesCheck but accepts the empty
// string, for fields whose default is "no input".
func optionalSmilesCheck(label string) schema.CheckFunc {
	check := smilesCheck(label)
	return func(value any) error {
		if s, ok := value.(string); ok && s == "" {
			return nil
		}
		return check(value)
	}
}
