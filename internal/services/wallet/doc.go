/*
Package wallet is the hospital wallet ledger.

Every balance change is a posting: one append-only WalletTransaction row and
one matching update of the wallet's running balance, written in the same
store transaction. Apply is the only place postings happen; Credit and Debit
wrap it in their own transaction, while the referral and payout services call
it inside theirs so that a settlement or a withdrawal commits together with
its ledger rows.

Usage:

	svc := wallet.NewService(store, cache, wallet.Config{Currency: "INR"}, nil, log)

	// Credit a hospital
	row, err := svc.Credit(ctx, hospitalID, decimal.NewFromInt(66), "Manual adjustment", "")

	// Read the cached balance
	bal, err := svc.GetBalance(ctx, hospitalID)

Balances are cached in Redis and invalidated after each committed posting.
The cache is never consulted when a posting decides whether funds suffice.
*/
package wallet
