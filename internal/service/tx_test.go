package service

import "context"

type testTxRepos struct {
	items         ItemRepositoryInterface
	embeddingJobs EmbeddingJobRepositoryInterface
}

func (t *testTxRepos) Items() ItemRepositoryInterface {
	return t.items
}

func (t *testTxRepos) EmbeddingJobs() EmbeddingJobRepositoryInterface {
	return t.embeddingJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
