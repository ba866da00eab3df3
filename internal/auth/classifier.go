package auth

// トークン自体にはロール種別のタグが無いので、
// どのシークレットで署名検証が通るかで本人の種類を判定する。
// 試す順序は固定（customer → merchant）。
type secretEntry struct {
	role   Role
	secret []byte
}

type Classifier struct {
	entries []secretEntry
}

func NewClassifier(customerSecret, merchantSecret string) *Classifier {
	return &Classifier{
		entries: []secretEntry{
			{role: RoleCustomer, secret: []byte(customerSecret)},
			{role: RoleMerchant, secret: []byte(merchantSecret)},
		},
	}
}

// Classifyはシークレットを順に試し、検証が通ってロールも一致したclaimsを返す。
// どれも通らなければErrVerification。
func (c *Classifier) Classify(rawToken string) (Claims, error) {
	if rawToken == "" {
		return Claims{}, ErrVerification
	}

	for _, e := range c.entries {
		claims, err := Verify(rawToken, e.secret)
		if err != nil {
			continue
		}
		if claims.Role != e.role {
			continue
		}
		return claims, nil
	}

	return Claims{}, ErrVerification
}
