package accountroles

import (
	"fmt"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/decoder"
)

// AssignRoles 按指令的固定角色顺序消费账户，剩余账户依次进入 signer_accounts。
// 未登记的指令不做角色分配，但账户下标仍需合法。
func AssignRoles(desc *decoder.Descriptor, accountIndices []byte, resolved []string) (core.InputAccounts, error) {
	var out core.InputAccounts

	addrs := make([]string, len(accountIndices))
	for i, idx := range accountIndices {
		if int(idx) >= len(resolved) {
			return core.InputAccounts{}, fmt.Errorf("%w: account #%d index %d, resolved %d",
				core.ErrUnresolvedAccountIndex, i, idx, len(resolved))
		}
		addrs[i] = resolved[idx]
	}

	if desc == nil || !desc.Known {
		return out, nil
	}

	n := min(len(desc.Roles), len(addrs))
	for i := 0; i < n; i++ {
		out.Set(desc.Roles[i], addrs[i])
	}
	if len(addrs) > n {
		out.SignerAccounts = append([]string(nil), addrs[n:]...)
	}
	return out, nil
}
