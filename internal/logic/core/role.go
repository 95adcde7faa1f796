package core

// Role 指令账户的语义角色
type Role uint8

const (
	RoleMint Role = iota + 1
	RoleRentSysvar
	RoleAccount
	RoleOwner
	RoleSource
	RoleDestination
	RoleDelegate
	RoleAuthority
	RolePayer
	RoleFundRelocationSysProgram
	RoleFundingAccount
	RoleMintFundingSysProgram
)

var roleNames = map[Role]string{
	RoleMint:                     "mint",
	RoleRentSysvar:               "rent_sysvar",
	RoleAccount:                  "account",
	RoleOwner:                    "owner",
	RoleSource:                   "source",
	RoleDestination:              "destination",
	RoleDelegate:                 "delegate",
	RoleAuthority:                "authority",
	RolePayer:                    "payer",
	RoleFundRelocationSysProgram: "fund_relocation_sys_program",
	RoleFundingAccount:           "funding_account",
	RoleMintFundingSysProgram:    "mint_funding_sys_program",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Set 把地址写入对应角色字段
func (a *InputAccounts) Set(r Role, addr string) {
	switch r {
	case RoleMint:
		a.Mint = addr
	case RoleRentSysvar:
		a.RentSysvar = addr
	case RoleAccount:
		a.Account = addr
	case RoleOwner:
		a.Owner = addr
	case RoleSource:
		a.Source = addr
	case RoleDestination:
		a.Destination = addr
	case RoleDelegate:
		a.Delegate = addr
	case RoleAuthority:
		a.Authority = addr
	case RolePayer:
		a.Payer = addr
	case RoleFundRelocationSysProgram:
		a.FundRelocationSysProgram = addr
	case RoleFundingAccount:
		a.FundingAccount = addr
	case RoleMintFundingSysProgram:
		a.MintFundingSysProgram = addr
	}
}

// Get 读取角色对应的地址
func (a *InputAccounts) Get(r Role) string {
	switch r {
	case RoleMint:
		return a.Mint
	case RoleRentSysvar:
		return a.RentSysvar
	case RoleAccount:
		return a.Account
	case RoleOwner:
		return a.Owner
	case RoleSource:
		return a.Source
	case RoleDestination:
		return a.Destination
	case RoleDelegate:
		return a.Delegate
	case RoleAuthority:
		return a.Authority
	case RolePayer:
		return a.Payer
	case RoleFundRelocationSysProgram:
		return a.FundRelocationSysProgram
	case RoleFundingAccount:
		return a.FundingAccount
	case RoleMintFundingSysProgram:
		return a.MintFundingSysProgram
	}
	return ""
}
