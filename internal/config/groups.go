package config

// DefaultGroups is the agent roster used when no groups are configured.
// SWARM and LOKY sit in both AHF and AVC.
func DefaultGroups() []GroupConfig {
	return []GroupConfig{
		{
			Name: "AHF",
			Agents: []AgentConfig{
				{Name: "AXR", Address: "0x01fD30172Cb08A4b8BcD031cb69f45E6eB4693A4", Token: "0x58Db197E91Bc8Cf1587F75850683e4bd0730e6BF"},
				{Name: "AIXBT", Address: "0x9023dbe89FDD60851468eb8CD050B5cA1751C635", Token: "0x4F9Fd6Be4a90f2620860d680c0d4d5Fb53d1A825"},
				{Name: "TRUST", Address: "0x9B1c65eE0Fb8dC52ca331faAFb85Ac03332f951E"},
				{Name: "LOKY", Address: "0xB7e36a77997Ac866A542Bd83cBc390D143897a01", Token: "0x1A3e429D2D22149Cc61e0f539B112a227c844aa3"},
				{Name: "WACH", Address: "0xAd7FA8369417E2e608A1e215486cfb0D1Da90191", Token: "0xCC9AD02796deC5f4f0710df80C1f011AF85eb9E1"},
				{Name: "SWARM", Address: "0xa17b17F999Baa5E572B75fd916A66c58b4ED6dE4", Token: "0xea87169699dabd028a78d4B91544b4298086BAF6"},
				{Name: "VU", Address: "0x665B253678765c5c53d73d9e7B0480a61f8F4D62", Token: "0x511ef9Ad5E645E533D15DF605B4628e3D0d0Ff53"},
				{Name: "CERTAI", Address: "0xBf5f46ABebCE87346fE2c8789b8B743940E98083", Token: "0xf5f2a79eECcF6e7F4C570c803F529930e29cc96B"},
				{Name: "BRAIN", Address: "0xa51AC6fE439ba7c29AD978a92Ef29BBeF2C313dd", Token: "0xCE1eAB31756A48915B7E7bb79C589835aAc6242d"},
			},
		},
		{
			Name: "AMH",
			Agents: []AgentConfig{
				{Name: "LUNA", Address: "0xE7f4fF72122B0040eB31d6470D75cb2bFe4c32c5", Token: "0x55cD6469F597452B5A7536e2CD98fDE4c1247ee4"},
				{Name: "AIKEK", Address: "0xb4c999e1cc0941b48e7589f7e85d677787C3Abd0", Token: "0x681A09A902D9C7445b3B1Ab282C38D60c72F1f09"},
				{Name: "MAYA", Address: "0x2E72fa7C2F6EE084dde88eeD79CC6a49d0A788ba", Token: "0x072915A43Ac255cdE1Fa568218E5b6b10d0CB10F"},
				{Name: "LUCIEN", Address: "0xeee9Cb0fafF1D9e7423BF87A341C70F58A1A0cc7", Token: "0x444600d9fA140E9506D0cBC436Bffad3D5C3Febc"},
				{Name: "MUSIC", Address: "0x52D84Ac5c95d665f66F43F5379904F5FF1Cdc0a8"},
				{Name: "ACOLYT", Address: "0xeDaf82727b14faB44F3A9DBFD6500719b230D1C6", Token: "0x79dacb99A8698052a9898E81Fdf883c29efb93cb"},
			},
		},
		{
			Name: "AVC",
			Agents: []AgentConfig{
				{Name: "VADER", Address: "0x89a7843Dc8AFB914f5f23FA1B58d58C5821a6239", Token: "0x731814e491571A2e9eE3c5b1F7f3b962eE8f4870"},
				{Name: "ARBUS", Address: "0xE502bAB730Bf3403e944f132B23ee5f1C2cEB653", Token: "0xBDC27118Ca76B375C6887b0ff068aFb03DfC21A0"},
				{Name: "BRO", Address: "0x4E3d5DdaB1Ed4f18148c2B376CB58ed990C981F9", Token: "0xc796E499CC8f599A2a8280825d8BdA92F7a895e0"},
				{Name: "SWARM", Address: "0xa17b17F999Baa5E572B75fd916A66c58b4ED6dE4", Token: "0xea87169699dabd028a78d4B91544b4298086BAF6"},
				{Name: "LOKY", Address: "0xB7e36a77997Ac866A542Bd83cBc390D143897a01", Token: "0x1A3e429D2D22149Cc61e0f539B112a227c844aa3"},
			},
		},
	}
}
